package core

import (
	"context"
	"time"
)

// FridgeIngredient is the read model of a non-consumed fridge item shared
// with recipe suggestions and nutrition analysis.
type FridgeIngredient struct {
	Name           string     `json:"name"`
	Quantity       float64    `json:"quantity"`
	Unit           *string    `json:"unit"`
	ExpirationDate *time.Time `json:"expirationDate"`
}

// InventoryReader lists what a family currently has in stock.
type InventoryReader interface {
	Ingredients(ctx context.Context, familyID int64) ([]FridgeIngredient, error)
}

// IngredientNames extracts the names used by the recipe matcher.
func IngredientNames(items []FridgeIngredient) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}
