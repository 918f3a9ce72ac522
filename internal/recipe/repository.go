package recipe

import "context"

type Repository interface {
	// ListByFamily returns the family's recipes, newest first.
	ListByFamily(ctx context.Context, familyID int64) ([]FamilyRecipe, error)
	Create(ctx context.Context, r *FamilyRecipe) error
	Get(ctx context.Context, id int64) (*FamilyRecipe, error)
	Update(ctx context.Context, r *FamilyRecipe) error
	Delete(ctx context.Context, id int64) error
}
