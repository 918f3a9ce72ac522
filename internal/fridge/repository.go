package fridge

import (
	"context"
	"time"
)

type Repository interface {
	// List returns non-consumed items, soonest expiration first, undated last.
	List(ctx context.Context, familyID int64) ([]Item, error)
	// ListExpiring returns non-consumed dated items expiring on or before until.
	ListExpiring(ctx context.Context, familyID int64, until time.Time) ([]Item, error)
	Create(ctx context.Context, item *Item) error
	// CreateBatch inserts all items or none.
	CreateBatch(ctx context.Context, items []*Item) error
	Get(ctx context.Context, id int64) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
}
