package fridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodsync/internal/core"

	"go.uber.org/zap"
)

const DefaultExpiringDays = 7

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

// today is midnight UTC of the current day.
func (s *Service) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and keeps only the day.
// An empty string means no date.
func parseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, core.NewValidationError(field, "must be a date (YYYY-MM-DD)")
		}
	}
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &day, nil
}

func (s *Service) List(ctx context.Context, userID, familyID int64) ([]Item, error) {
	if err := s.guard(ctx, familyID, userID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, familyID)
}

// Expiring lists items whose expiration date falls within the next days days
// (already expired items included).
func (s *Service) Expiring(ctx context.Context, userID, familyID int64, days int) ([]Item, error) {
	if days < 0 {
		return nil, core.NewValidationError("days", "must be >= 0")
	}
	if err := s.guard(ctx, familyID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListExpiring(ctx, familyID, s.today().AddDate(0, 0, days))
}

func (s *Service) build(userID int64, in CreateInput) (*Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, core.NewValidationError("name", "is required")
	}
	exp, err := parseDate("expirationDate", deref(in.ExpirationDate))
	if err != nil {
		return nil, err
	}

	it := &Item{
		FamilyID:        in.FamilyID,
		Name:            name,
		Quantity:        1,
		Unit:            in.Unit,
		Emoji:           in.Emoji,
		ExpirationDate:  exp,
		StorageLocation: LocationFridge,
		AddedByUserID:   &userID,
		Notes:           in.Notes,
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, core.NewValidationError("quantity", "must be >= 0")
		}
		it.Quantity = *in.Quantity
	}
	if in.StorageLocation != nil && *in.StorageLocation != "" {
		it.StorageLocation = *in.StorageLocation
	}
	today := s.today()
	it.PurchaseDate = &today
	return it, nil
}

func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (*Item, error) {
	if err := s.guard(ctx, in.FamilyID, userID); err != nil {
		return nil, err
	}
	it, err := s.build(userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// Import adds several items to one family at once, all or nothing.
func (s *Service) Import(ctx context.Context, userID, familyID int64, inputs []CreateInput) ([]Item, error) {
	if err := s.guard(ctx, familyID, userID); err != nil {
		return nil, err
	}

	items := make([]*Item, 0, len(inputs))
	for _, in := range inputs {
		in.FamilyID = familyID
		it, err := s.build(userID, in)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return nil, err
	}

	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = *it
	}
	s.log.Info("fridge items imported", zap.Int64("familyID", familyID), zap.Int("count", len(out)))
	return out, nil
}

// load fetches an item and checks the caller belongs to its family.
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
		if *in.Quantity < 0 {
			return nil, core.NewValidationError("quantity", "must be >= 0")
		}
		it.Quantity = *in.Quantity
	}
	if in.Unit != nil {
		it.Unit = in.Unit
	}
	if in.ExpirationDate != nil {
		if it.ExpirationDate, err = parseDate("expirationDate", *in.ExpirationDate); err != nil {
			return nil, err
		}
	}
	if in.StorageLocation != nil {
		it.StorageLocation = *in.StorageLocation
	}
	if in.Notes != nil {
		it.Notes = in.Notes
	}
	if in.IsConsumed != nil {
		s.setConsumed(it, *in.IsConsumed)
	}

	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) setConsumed(it *Item, consumed bool) {
	if consumed == it.IsConsumed {
		return
	}
	it.IsConsumed = consumed
	if consumed {
		now := s.now().UTC()
		it.ConsumedAt = &now
	} else {
		it.ConsumedAt = nil
	}
}

func (s *Service) Consume(ctx context.Context, userID, id int64) (*Item, error) {
	it, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.setConsumed(it, true)
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

// Ingredients implements core.InventoryReader. Callers check membership.
func (s *Service) Ingredients(ctx context.Context, familyID int64) ([]core.FridgeIngredient, error) {
	items, err := s.repo.List(ctx, familyID)
	if err != nil {
		return nil, err
	}
	out := make([]core.FridgeIngredient, len(items))
	for i, it := range items {
		out[i] = core.FridgeIngredient{
			Name:           it.Name,
			Quantity:       it.Quantity,
			Unit:           it.Unit,
			ExpirationDate: it.ExpirationDate,
		}
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
