package fridge

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"foodsync/internal/core"
)

type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]Item
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: map[int64]Item{}}
}

func (r *InMemoryRepository) filter(keep func(Item) bool) []Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Item{}
	for _, it := range r.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ExpirationDate, out[j].ExpirationDate
		switch {
		case a == nil && b == nil:
			return out[i].ID > out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.Before(*b)
		default:
			return out[i].ID > out[j].ID
		}
	})
	return out
}

func (r *InMemoryRepository) List(_ context.Context, familyID int64) ([]Item, error) {
	return r.filter(func(it Item) bool {
		return it.FamilyID == familyID && !it.IsConsumed
	}), nil
}

func (r *InMemoryRepository) ListExpiring(_ context.Context, familyID int64, until time.Time) ([]Item, error) {
	return r.filter(func(it Item) bool {
		return it.FamilyID == familyID && !it.IsConsumed &&
			it.ExpirationDate != nil && !it.ExpirationDate.After(until)
	}), nil
}

func (r *InMemoryRepository) insert(it *Item) {
	r.nextID++
	now := time.Now().UTC()
	it.ID = r.nextID
	it.CreatedAt = now
	it.UpdatedAt = now
	r.items[it.ID] = *it
}

func (r *InMemoryRepository) Create(_ context.Context, it *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(it)
	return nil
}

func (r *InMemoryRepository) CreateBatch(_ context.Context, items []*Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		r.insert(it)
	}
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("fridge item %d: %w", id, core.ErrNotFound)
	}
	return &it, nil
}

func (r *InMemoryRepository) Update(_ context.Context, it *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[it.ID]; !ok {
		return fmt.Errorf("fridge item %d: %w", it.ID, core.ErrNotFound)
	}
	it.UpdatedAt = time.Now().UTC()
	r.items[it.ID] = *it
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("fridge item %d: %w", id, core.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}
