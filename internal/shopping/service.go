package shopping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodsync/internal/core"

	"go.uber.org/zap"
)

type Service struct {
	repo    Repository
	members core.MembershipChecker
	now     func() time.Time
	log     *zap.Logger
}

func NewService(repo Repository, members core.MembershipChecker, log *zap.Logger) *Service {
	return &Service{repo: repo, members: members, now: time.Now, log: log}
}

func (s *Service) guard(ctx context.Context, familyID, userID int64) error {
	if err := core.RequireMember(ctx, s.members, familyID, userID); err != nil {
		return fmt.Errorf("not a member of this family: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID, familyID int64) ([]Item, error) {
	if err := s.guard(ctx, familyID, userID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, familyID)
}

func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (*Item, error) {
	if err := s.guard(ctx, in.FamilyID, userID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, core.NewValidationError("name", "is required")
	}
	it := &Item{
		FamilyID:      in.FamilyID,
		Name:          name,
		Quantity:      1,
		Unit:          in.Unit,
		Priority:      PriorityMedium,
		Notes:         in.Notes,
		AddedByUserID: &userID,
	}
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return nil, core.NewValidationError("quantity", "must be >= 1")
		}
		it.Quantity = *in.Quantity
	}
	if in.Priority != nil && *in.Priority != "" {
		it.Priority = *in.Priority
	}

	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) load(ctx context.Context, userID, id int64) (*Item, error) {
	it, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard(ctx, it.FamilyID, userID); err != nil {
		return nil, err
	}
	return it, nil
}

// setPurchased records who bought the item and when; unmarking clears both.
func (s *Service) setPurchased(it *Item, userID int64, purchased bool) {
	it.IsPurchased = purchased
	if purchased {
		now := s.now().UTC()
		it.PurchasedByUserID = &userID
		it.PurchasedAt = &now
		return
	}
	it.PurchasedByUserID = nil
	it.PurchasedAt = nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, in UpdateInput) (*Item, error) {
	it, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, core.NewValidationError("name", "is required")
		}
		it.Name = name
	}
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return nil, core.NewValidationError("quantity", "must be >= 1")
		}
		it.Quantity = *in.Quantity
	}
	if in.Unit != nil {
		it.Unit = in.Unit
	}
	if in.Priority != nil {
		it.Priority = *in.Priority
	}
	if in.Notes != nil {
		it.Notes = in.Notes
	}
	if in.IsPurchased != nil {
		s.setPurchased(it, userID, *in.IsPurchased)
	}

	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) Toggle(ctx context.Context, userID, id int64) (*Item, error) {
	it, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.setPurchased(it, userID, !it.IsPurchased)
	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ClearPurchased(ctx context.Context, userID, familyID int64) (int64, error) {
	if err := s.guard(ctx, familyID, userID); err != nil {
		return 0, err
	}
	n, err := s.repo.DeletePurchased(ctx, familyID)
	if err != nil {
		return 0, err
	}
	s.log.Info("purchased items cleared", zap.Int64("familyID", familyID), zap.Int64("count", n))
	return n, nil
}
