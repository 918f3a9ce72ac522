package shopping

import "time"

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Item struct {
	ID                int64      `json:"id"`
	FamilyID          int64      `json:"familyId"`
	Name              string     `json:"name"`
	Quantity          float64    `json:"quantity"`
	Unit              *string    `json:"unit"`
	Priority          string     `json:"priority"`
	Notes             *string    `json:"notes"`
	AddedByUserID     *int64     `json:"addedByUserId"`
	IsPurchased       bool       `json:"isPurchased"`
	PurchasedByUserID *int64     `json:"purchasedByUserId"`
	PurchasedAt       *time.Time `json:"purchasedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	FamilyID int64    `json:"familyId" binding:"required,gt=0"`
	Name     string   `json:"name" binding:"required,min=1,max=200"`
	Quantity *float64 `json:"quantity" binding:"omitempty,gte=1"`
	Unit     *string  `json:"unit" binding:"omitempty,max=50"`
	Priority *string  `json:"priority" binding:"omitempty,oneof=low medium high"`
	Notes    *string  `json:"notes" binding:"omitempty,max=500"`
}

type UpdateInput struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Quantity    *float64 `json:"quantity" binding:"omitempty,gte=1"`
	Unit        *string  `json:"unit" binding:"omitempty,max=50"`
	Priority    *string  `json:"priority" binding:"omitempty,oneof=low medium high"`
	Notes       *string  `json:"notes" binding:"omitempty,max=500"`
	IsPurchased *bool    `json:"isPurchased"`
}

// priorityRank orders high before medium before anything else.
func priorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}
