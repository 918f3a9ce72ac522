package nutrition

import (
	"context"
	"sync"
)

// InMemoryRepository stores profiles by user id. Unknown users have an empty
// profile.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[int64]Profile
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{profiles: map[int64]Profile{}}
}

// Put stores a possibly partial profile.
func (r *InMemoryRepository) Put(userID int64, p Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[userID] = p
}

func (r *InMemoryRepository) GetProfile(_ context.Context, userID int64) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[userID], nil
}

func (r *InMemoryRepository) SaveProfile(_ context.Context, userID int64, p BiometricProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[userID] = FromBiometrics(p)
	return nil
}
