package family

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodsync/internal/core"

	"go.uber.org/zap"
)

const maxInviteAttempts = 5

var ErrOwnerCannotLeave = errors.New("the owner cannot leave the family, transfer ownership first")

type CreateInput struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

type JoinInput struct {
	InviteCode string `json:"inviteCode" binding:"required,min=6,max=20"`
}

type PreferencesInput struct {
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	Allergies           []string `json:"allergies"`
	FavoriteCategories  []string `json:"favoriteCategories"`
	CookingSkillLevel   *string  `json:"cookingSkillLevel" binding:"omitempty,oneof=beginner intermediate advanced"`
}

type Service struct {
	repo    Repository
	newCode func() (string, error)
	log     *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, newCode: NewInviteCode, log: log}
}

// IsMember implements core.MembershipChecker.
func (s *Service) IsMember(ctx context.Context, familyID, userID int64) (bool, error) {
	return s.repo.IsMember(ctx, familyID, userID)
}

func (s *Service) List(ctx context.Context, userID int64) ([]Summary, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Create makes a family with a fresh invite code; the creator becomes admin.
func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (*Family, error) {
	name := strings.TrimSpace(in.Name)
	if len(name) < 2 {
		return nil, core.NewValidationError("name", "must be at least 2")
	}

	for attempt := 0; attempt < maxInviteAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate invite code: %w", err)
		}

		exists, err := s.repo.InviteCodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		f := &Family{Name: name, InviteCode: code, OwnerID: userID}
		err = s.repo.Create(ctx, f)
		if errors.Is(err, core.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.log.Info("family created", zap.Int64("familyID", f.ID), zap.Int64("ownerID", userID))
		return f, nil
	}
	return nil, fmt.Errorf("no free invite code after %d attempts", maxInviteAttempts)
}

func (s *Service) Join(ctx context.Context, userID int64, in JoinInput) (*Family, error) {
	code := strings.ToUpper(strings.TrimSpace(in.InviteCode))

	f, err := s.repo.FindByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("invalid invite code: %w", core.ErrNotFound)
		}
		return nil, err
	}

	if err := s.repo.AddMember(ctx, f.ID, userID, RoleMember); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, fmt.Errorf("already a member of this family: %w", core.ErrConflict)
		}
		return nil, err
	}

	s.log.Info("family joined", zap.Int64("familyID", f.ID), zap.Int64("userID", userID))
	return s.repo.FindByID(ctx, f.ID)
}

func (s *Service) Show(ctx context.Context, userID, familyID int64) (*Detail, error) {
	if err := core.RequireMember(ctx, s.repo, familyID, userID); err != nil {
		return nil, fmt.Errorf("not a member of this family: %w", err)
	}

	f, err := s.repo.FindByID(ctx, familyID)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, familyID)
	if err != nil {
		return nil, err
	}
	return &Detail{Family: *f, Members: members}, nil
}

func (s *Service) Leave(ctx context.Context, userID, familyID int64) error {
	if _, err := s.repo.GetMembership(ctx, familyID, userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("not a member of this family: %w", core.ErrNotFound)
		}
		return err
	}

	f, err := s.repo.FindByID(ctx, familyID)
	if err != nil {
		return err
	}
	if f.OwnerID == userID {
		return ErrOwnerCannotLeave
	}

	return s.repo.RemoveMember(ctx, familyID, userID)
}

func (s *Service) UpdatePreferences(ctx context.Context, userID, familyID int64, in PreferencesInput) (*Preferences, error) {
	if err := core.RequireMember(ctx, s.repo, familyID, userID); err != nil {
		return nil, fmt.Errorf("not a member of this family: %w", err)
	}

	p := Preferences{
		FamilyID:            familyID,
		UserID:              userID,
		DietaryRestrictions: nonNil(in.DietaryRestrictions),
		Allergies:           nonNil(in.Allergies),
		FavoriteCategories:  nonNil(in.FavoriteCategories),
		CookingSkillLevel:   in.CookingSkillLevel,
	}
	if err := s.repo.SavePreferences(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}
