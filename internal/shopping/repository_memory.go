package shopping

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

func (r *InMemoryRepository) List(_ context.Context, familyID int64) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Item{}
	for _, it := range r.items {
		if it.FamilyID == familyID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsPurchased != b.IsPurchased {
			return !a.IsPurchased
		}
		if ra, rb := priorityRank(a.Priority), priorityRank(b.Priority); ra != rb {
			return ra < rb
		}
		// ids grow with creation time
		return a.ID > b.ID
	})
	return out, nil
}

func (r *InMemoryRepository) Create(_ context.Context, it *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	it.ID = r.nextID
	it.CreatedAt = now
	it.UpdatedAt = now
	r.items[it.ID] = *it
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("shopping item %d: %w", id, core.ErrNotFound)
	}
	return &it, nil
}

func (r *InMemoryRepository) Update(_ context.Context, it *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[it.ID]; !ok {
		return fmt.Errorf("shopping item %d: %w", it.ID, core.ErrNotFound)
	}
	it.UpdatedAt = time.Now().UTC()
	r.items[it.ID] = *it
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("shopping item %d: %w", id, core.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

func (r *InMemoryRepository) DeletePurchased(_ context.Context, familyID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, it := range r.items {
		if it.FamilyID == familyID && it.IsPurchased {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}
