package fridge

import "time"

const (
	LocationFridge  = "fridge"
	LocationFreezer = "freezer"
	LocationPantry  = "pantry"
)

const dateLayout = "2006-01-02"

type Item struct {
	ID              int64      `json:"id"`
	FamilyID        int64      `json:"familyId"`
	Name            string     `json:"name"`
	Quantity        float64    `json:"quantity"`
	Unit            *string    `json:"unit"`
	Emoji           *string    `json:"emoji"`
	ExpirationDate  *time.Time `json:"expirationDate"`
	PurchaseDate    *time.Time `json:"purchaseDate"`
	StorageLocation string     `json:"storageLocation"`
	AddedByUserID   *int64     `json:"addedByUserId"`
	IsConsumed      bool       `json:"isConsumed"`
	ConsumedAt      *time.Time `json:"consumedAt"`
	Notes           *string    `json:"notes"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	FamilyID        int64    `json:"familyId" binding:"required,gt=0"`
	Name            string   `json:"name" binding:"required,min=1,max=200"`
	Quantity        *float64 `json:"quantity" binding:"omitempty,gte=0"`
	Unit            *string  `json:"unit" binding:"omitempty,max=50"`
	Emoji           *string  `json:"emoji" binding:"omitempty,max=10"`
	ExpirationDate  *string  `json:"expirationDate"`
	StorageLocation *string  `json:"storageLocation" binding:"omitempty,oneof=fridge freezer pantry"`
	Notes           *string  `json:"notes" binding:"omitempty,max=500"`
}

// UpdateInput patches an item. Absent fields are left alone; an empty
// expirationDate clears it.
type UpdateInput struct {
	Name            *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Quantity        *float64 `json:"quantity" binding:"omitempty,gte=0"`
	Unit            *string  `json:"unit" binding:"omitempty,max=50"`
	ExpirationDate  *string  `json:"expirationDate"`
	StorageLocation *string  `json:"storageLocation" binding:"omitempty,oneof=fridge freezer pantry"`
	Notes           *string  `json:"notes" binding:"omitempty,max=500"`
	IsConsumed      *bool    `json:"isConsumed"`
}
