package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"foodsync/internal/core"
)

type InMemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]*User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users: make(map[string]*User),
	}
}

func (r *InMemoryUserRepository) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return fmt.Errorf("email %s: %w", user.Email, core.ErrConflict)
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	stored := *user
	r.users[user.Email] = &stored
	return nil
}

func (r *InMemoryUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, core.ErrNotFound)
	}
	cp := *user
	return &cp, nil
}

func (r *InMemoryUserRepository) FindByID(_ context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id {
			cp := *user
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %d: %w", id, core.ErrNotFound)
}

// SetActive flips the active flag. Used by tests.
func (r *InMemoryUserRepository) SetActive(email string, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		u.IsActive = active
	}
}
