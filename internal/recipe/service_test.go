package recipe

import (
	"context"
	"errors"
	"testing"

	"foodsync/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticMembers map[[2]int64]bool

func (m staticMembers) IsMember(_ context.Context, familyID, userID int64) (bool, error) {
	return m[[2]int64{familyID, userID}], nil
}

type staticInventory struct {
	items map[int64][]core.FridgeIngredient
	err   error
}

func (s staticInventory) Ingredients(_ context.Context, familyID int64) ([]core.FridgeIngredient, error) {
	return s.items[familyID], s.err
}

func fridgeOf(names ...string) []core.FridgeIngredient {
	out := make([]core.FridgeIngredient, len(names))
	for i, n := range names {
		out[i] = core.FridgeIngredient{Name: n, Quantity: 1}
	}
	return out
}

func newTestService(t *testing.T, inv core.InventoryReader) *Service {
	t.Helper()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	return NewService(catalog, NewInMemoryRepository(), staticMembers{{1, 10}: true}, inv, zap.NewNop())
}

func TestSuggest(t *testing.T) {
	inv := staticInventory{items: map[int64][]core.FridgeIngredient{
		1: fridgeOf("Oeufs", "Fromage râpé", "beurre", ""),
	}}
	svc := newTestService(t, inv)

	out, err := svc.Suggest(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, out.FridgeItemCount)

	var names []string
	for _, s := range out.Suggestions {
		names = append(names, s.Name)
	}
	// "fromage râpé" contains "fromage", so it matches every cheese recipe
	assert.Equal(t, []string{
		"Omelette au fromage",
		"Pâtes au fromage",
		"Croque-monsieur",
		"Quiche lorraine",
		"Salade composée",
	}, names)
	assert.Equal(t, 100, out.Suggestions[0].MatchPercentage)
}

func TestSuggest_EmptyFridge(t *testing.T) {
	svc := newTestService(t, staticInventory{})

	out, err := svc.Suggest(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.NotNil(t, out.Suggestions)
	assert.Empty(t, out.Suggestions)
	assert.Equal(t, 0, out.FridgeItemCount)
}

func TestSuggest_Errors(t *testing.T) {
	svc := newTestService(t, staticInventory{err: errors.New("db down")})

	_, err := svc.Suggest(context.Background(), 99, 1)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Suggest(context.Background(), 10, 1)
	assert.Error(t, err)
}

func TestCatalogRecipe(t *testing.T) {
	svc := newTestService(t, staticInventory{})

	r, err := svc.CatalogRecipe(8)
	require.NoError(t, err)
	assert.Equal(t, "Quiche lorraine", r.Name)

	_, err = svc.CatalogRecipe(42)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Len(t, svc.Catalog(), 8)
}

func TestFamilyRecipes_CRUD(t *testing.T) {
	svc := newTestService(t, staticInventory{})
	ctx := context.Background()

	r, err := svc.CreateFamily(ctx, 10, CreateInput{
		FamilyID:     1,
		Title:        " Gratin de mamie ",
		Ingredients:  []Ingredient{{Name: "pommes de terre", Quantity: "1", Unit: "kg"}},
		Instructions: []string{"Éplucher", "Cuire"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Gratin de mamie", r.Title)
	assert.Equal(t, DefaultServings, r.Servings)
	assert.Equal(t, DifficultyMedium, r.Difficulty)
	assert.Equal(t, []string{}, r.Tags)

	second, err := svc.CreateFamily(ctx, 10, CreateInput{FamilyID: 1, Title: "Crêpes", IsAIGenerated: true})
	require.NoError(t, err)

	list, err := svc.ListFamily(ctx, 10, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	servings := 6
	tags := []string{"hiver"}
	updated, err := svc.UpdateFamily(ctx, 10, r.ID, UpdateInput{Servings: &servings, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Servings)
	assert.Equal(t, []string{"hiver"}, updated.Tags)
	assert.Equal(t, "Gratin de mamie", updated.Title)
	assert.Len(t, updated.Ingredients, 1)

	_, err = svc.UpdateFamily(ctx, 99, r.ID, UpdateInput{})
	assert.ErrorIs(t, err, core.ErrForbidden)

	require.NoError(t, svc.DeleteFamily(ctx, 10, r.ID))
	assert.ErrorIs(t, svc.DeleteFamily(ctx, 10, r.ID), core.ErrNotFound)

	_, err = svc.CreateFamily(ctx, 99, CreateInput{FamilyID: 1, Title: "x"})
	assert.ErrorIs(t, err, core.ErrForbidden)
}
