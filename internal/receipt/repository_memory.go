package receipt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"foodsync/internal/core"
	"foodsync/internal/llm"

	"github.com/google/uuid"
)

type InMemoryRepository struct {
	mu        sync.Mutex
	scans     map[uuid.UUID]*Scan
	order     []uuid.UUID
	claimedAt map[uuid.UUID]time.Time
	lease     time.Duration
	now       func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		scans:     map[uuid.UUID]*Scan{},
		claimedAt: map[uuid.UUID]time.Time{},
		lease:     DefaultProcessingLease,
		now:       time.Now,
	}
}

func (r *InMemoryRepository) Create(_ context.Context, s *Scan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.scans[s.ID]; ok {
		return fmt.Errorf("receipt scan %s: %w", s.ID, core.ErrConflict)
	}
	s.CreatedAt = r.now().UTC()
	stored := *s
	r.scans[s.ID] = &stored
	r.order = append(r.order, s.ID)
	return nil
}

func (r *InMemoryRepository) lookup(id uuid.UUID) (*Scan, error) {
	s, ok := r.scans[id]
	if !ok {
		return nil, fmt.Errorf("receipt scan %s: %w", id, core.ErrNotFound)
	}
	return s, nil
}

func (r *InMemoryRepository) Get(_ context.Context, id uuid.UUID) (*Scan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	out := *s
	out.Items = append([]llm.ReceiptItem{}, s.Items...)
	return &out, nil
}

func (r *InMemoryRepository) ClaimPending(_ context.Context) (*Scan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for _, id := range r.order {
		s := r.scans[id]
		expired := s.Status == StatusProcessing && now.Sub(r.claimedAt[id]) > r.lease
		if s.Status == StatusPending || expired {
			s.Status = StatusProcessing
			r.claimedAt[id] = now
			out := *s
			out.Items = append([]llm.ReceiptItem{}, s.Items...)
			return &out, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) Complete(_ context.Context, id uuid.UUID, items []llm.ReceiptItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	now := r.now().UTC()
	delete(r.claimedAt, id)
	s.Status = StatusCompleted
	s.Items = append([]llm.ReceiptItem{}, items...)
	s.ErrorMessage = nil
	s.ProcessedAt = &now
	return nil
}

func (r *InMemoryRepository) Fail(_ context.Context, id uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	now := r.now().UTC()
	delete(r.claimedAt, id)
	s.Status = StatusFailed
	s.ErrorMessage = &reason
	s.ProcessedAt = &now
	return nil
}

func (r *InMemoryRepository) ClaimImport(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	if s.Status != StatusCompleted || s.ImportedAt != nil {
		return fmt.Errorf("receipt scan %s is not importable: %w", id, core.ErrConflict)
	}
	now := r.now().UTC()
	s.ImportedAt = &now
	return nil
}

func (r *InMemoryRepository) ReleaseImport(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	s.ImportedAt = nil
	return nil
}
