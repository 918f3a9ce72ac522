package llm

import "foodsync/internal/core"

// MealRequest carries everything the meal prompt needs. Enumerations are
// passed as their wire strings.
type MealRequest struct {
	Weight        float64
	Height        float64
	Age           int
	Gender        string
	ActivityLevel string
	Goal          string

	Calories int
	Proteins int
	Carbs    int
	Fats     int

	Ingredients []core.FridgeIngredient
}

type MealSuggestion struct {
	Name         string   `json:"name"`
	Emoji        string   `json:"emoji"`
	Type         string   `json:"type"` // lunch | dinner
	Calories     float64  `json:"calories"`
	Proteins     float64  `json:"proteins"`
	Carbs        float64  `json:"carbs"`
	Fats         float64  `json:"fats"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTime     float64  `json:"prepTime"`
	Difficulty   string   `json:"difficulty"`
	Tips         string   `json:"tips"`
}

type MealPlan struct {
	Lunch  []MealSuggestion `json:"lunch"`
	Dinner []MealSuggestion `json:"dinner"`
}

type ReceiptItem struct {
	Name           string   `json:"name"`
	Quantity       float64  `json:"quantity"`
	Price          *float64 `json:"price,omitempty"`
	Category       string   `json:"category,omitempty"`
	ExpirationDate *string  `json:"expirationDate,omitempty"` // YYYY-MM-DD
}
