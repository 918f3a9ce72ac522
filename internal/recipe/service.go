package recipe

import (
	"context"
	"fmt"
	"strings"

	"foodsync/internal/core"

	"go.uber.org/zap"
)

// Suggestions is the answer to "what can I cook with what is in the fridge".
type Suggestions struct {
	Suggestions     []ScoredRecipe `json:"suggestions"`
	FridgeItemCount int            `json:"fridgeItemCount"`
}

type Service struct {
	catalog   Catalog
	repo      Repository
	members   core.MembershipChecker
	inventory core.InventoryReader
	log       *zap.Logger
}

func NewService(catalog Catalog, repo Repository, members core.MembershipChecker, inventory core.InventoryReader, log *zap.Logger) *Service {
	return &Service{catalog: catalog, repo: repo, members: members, inventory: inventory, log: log}
}

func (s *Service) guard(ctx context.Context, familyID, userID int64) error {
	if err := core.RequireMember(ctx, s.members, familyID, userID); err != nil {
		return fmt.Errorf("not a member of this family: %w", err)
	}
	return nil
}

func (s *Service) Catalog() []CatalogRecipe {
	return s.catalog.All()
}

func (s *Service) CatalogRecipe(id int) (CatalogRecipe, error) {
	r, ok := s.catalog.Find(id)
	if !ok {
		return CatalogRecipe{}, fmt.Errorf("recipe %d: %w", id, core.ErrNotFound)
	}
	return r, nil
}

// Suggest ranks catalog recipes against the family's non-consumed fridge
// items.
func (s *Service) Suggest(ctx context.Context, userID, familyID int64) (*Suggestions, error) {
	if err := s.guard(ctx, familyID, userID); err != nil {
		return nil, err
	}

	items, err := s.inventory.Ingredients(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("load fridge: %w", err)
	}

	return &Suggestions{
		Suggestions:     Match(s.catalog, core.IngredientNames(items)),
		FridgeItemCount: len(items),
	}, nil
}

func (s *Service) ListFamily(ctx context.Context, userID, familyID int64) ([]FamilyRecipe, error) {
	if err := s.guard(ctx, familyID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByFamily(ctx, familyID)
}

func (s *Service) CreateFamily(ctx context.Context, userID int64, in CreateInput) (*FamilyRecipe, error) {
	if err := s.guard(ctx, in.FamilyID, userID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, core.NewValidationError("title", "is required")
	}
	r := &FamilyRecipe{
		FamilyID:        in.FamilyID,
		Title:           title,
		Description:     in.Description,
		PrepTimeMinutes: in.PrepTimeMinutes,
		CookTimeMinutes: in.CookTimeMinutes,
		Servings:        DefaultServings,
		Difficulty:      DifficultyMedium,
		Ingredients:     nonNilIngredients(in.Ingredients),
		Instructions:    nonNil(in.Instructions),
		Tags:            nonNil(in.Tags),
		IsAIGenerated:   in.IsAIGenerated,
		CreatedByUserID: &userID,
	}
	if in.Servings != nil {
		r.Servings = *in.Servings
	}
	if in.Difficulty != nil && *in.Difficulty != "" {
		r.Difficulty = *in.Difficulty
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info("family recipe created", zap.Int64("familyID", r.FamilyID), zap.Int64("recipeID", r.ID))
	return r, nil
}

func (s *Service) load(ctx context.Context, userID, id int64) (*FamilyRecipe, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard(ctx, r.FamilyID, userID); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) UpdateFamily(ctx context.Context, userID, id int64, in UpdateInput) (*FamilyRecipe, error) {
	r, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, core.NewValidationError("title", "is required")
		}
		r.Title = title
	}
	if in.Description != nil {
		r.Description = in.Description
	}
	if in.PrepTimeMinutes != nil {
		r.PrepTimeMinutes = in.PrepTimeMinutes
	}
	if in.CookTimeMinutes != nil {
		r.CookTimeMinutes = in.CookTimeMinutes
	}
	if in.Servings != nil {
		r.Servings = *in.Servings
	}
	if in.Difficulty != nil {
		r.Difficulty = *in.Difficulty
	}
	if in.Ingredients != nil {
		r.Ingredients = nonNilIngredients(*in.Ingredients)
	}
	if in.Instructions != nil {
		r.Instructions = nonNil(*in.Instructions)
	}
	if in.Tags != nil {
		r.Tags = nonNil(*in.Tags)
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) DeleteFamily(ctx context.Context, userID, id int64) error {
	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilIngredients(v []Ingredient) []Ingredient {
	if v == nil {
		return []Ingredient{}
	}
	return v
}
