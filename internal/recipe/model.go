package recipe

import "time"

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

const DefaultServings = 4

type Ingredient struct {
	Name     string `json:"name" binding:"required,min=1"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
}

// FamilyRecipe is a recipe saved by a family, typed in or kept from an AI
// meal suggestion.
type FamilyRecipe struct {
	ID              int64        `json:"id"`
	FamilyID        int64        `json:"familyId"`
	Title           string       `json:"title"`
	Description     *string      `json:"description"`
	PrepTimeMinutes *int         `json:"prepTimeMinutes"`
	CookTimeMinutes *int         `json:"cookTimeMinutes"`
	Servings        int          `json:"servings"`
	Difficulty      string       `json:"difficulty"`
	Ingredients     []Ingredient `json:"ingredients"`
	Instructions    []string     `json:"instructions"`
	Tags            []string     `json:"tags"`
	IsAIGenerated   bool         `json:"isAiGenerated"`
	CreatedByUserID *int64       `json:"createdByUserId"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

type CreateInput struct {
	FamilyID        int64        `json:"familyId" binding:"required,gt=0"`
	Title           string       `json:"title" binding:"required,min=1,max=200"`
	Description     *string      `json:"description" binding:"omitempty,max=1000"`
	PrepTimeMinutes *int         `json:"prepTimeMinutes" binding:"omitempty,gte=0"`
	CookTimeMinutes *int         `json:"cookTimeMinutes" binding:"omitempty,gte=0"`
	Servings        *int         `json:"servings" binding:"omitempty,gte=1"`
	Difficulty      *string      `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Ingredients     []Ingredient `json:"ingredients" binding:"required,dive"`
	Instructions    []string     `json:"instructions" binding:"required,dive,min=1"`
	Tags            []string     `json:"tags"`
	IsAIGenerated   bool         `json:"isAiGenerated"`
}

type UpdateInput struct {
	Title           *string       `json:"title" binding:"omitempty,min=1,max=200"`
	Description     *string       `json:"description" binding:"omitempty,max=1000"`
	PrepTimeMinutes *int          `json:"prepTimeMinutes" binding:"omitempty,gte=0"`
	CookTimeMinutes *int          `json:"cookTimeMinutes" binding:"omitempty,gte=0"`
	Servings        *int          `json:"servings" binding:"omitempty,gte=1"`
	Difficulty      *string       `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Ingredients     *[]Ingredient `json:"ingredients" binding:"omitempty,dive"`
	Instructions    *[]string     `json:"instructions" binding:"omitempty,dive,min=1"`
	Tags            *[]string     `json:"tags"`
}
