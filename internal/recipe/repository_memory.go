package recipe

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"foodsync/internal/core"
)

type InMemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	recipes map[int64]FamilyRecipe
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{recipes: map[int64]FamilyRecipe{}}
}

func (m *InMemoryRepository) ListByFamily(_ context.Context, familyID int64) ([]FamilyRecipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []FamilyRecipe{}
	for _, r := range m.recipes {
		if r.FamilyID == familyID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *InMemoryRepository) Create(_ context.Context, r *FamilyRecipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := time.Now().UTC()
	r.ID = m.nextID
	r.CreatedAt = now
	r.UpdatedAt = now
	m.recipes[r.ID] = *r
	return nil
}

func (m *InMemoryRepository) Get(_ context.Context, id int64) (*FamilyRecipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipe %d: %w", id, core.ErrNotFound)
	}
	return &r, nil
}

func (m *InMemoryRepository) Update(_ context.Context, r *FamilyRecipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[r.ID]; !ok {
		return fmt.Errorf("recipe %d: %w", r.ID, core.ErrNotFound)
	}
	r.UpdatedAt = time.Now().UTC()
	m.recipes[r.ID] = *r
	return nil
}

func (m *InMemoryRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[id]; !ok {
		return fmt.Errorf("recipe %d: %w", id, core.ErrNotFound)
	}
	delete(m.recipes, id)
	return nil
}
