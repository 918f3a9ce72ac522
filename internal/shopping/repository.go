package shopping

import "context"

type Repository interface {
	// List orders unpurchased items first, then by priority, newest first.
	List(ctx context.Context, familyID int64) ([]Item, error)
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, id int64) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
	// DeletePurchased removes every purchased item of the family and
	// reports how many were removed.
	DeletePurchased(ctx context.Context, familyID int64) (int64, error)
}
