package family

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"foodsync/internal/core"
)

type InMemoryRepository struct {
	mu          sync.RWMutex
	nextID      int64
	families    map[int64]*Family
	members     []Membership
	preferences map[[2]int64]Preferences
	users       map[int64]MemberUser
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		families:    map[int64]*Family{},
		preferences: map[[2]int64]Preferences{},
		users:       map[int64]MemberUser{},
	}
}

// PutUser registers the user summary returned by ListMembers.
func (r *InMemoryRepository) PutUser(u MemberUser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}

func (r *InMemoryRepository) Create(_ context.Context, f *Family) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.families {
		if existing.InviteCode == f.InviteCode {
			return fmt.Errorf("invite code %s: %w", f.InviteCode, core.ErrConflict)
		}
	}
	r.nextID++
	now := time.Now().UTC()
	f.ID = r.nextID
	f.MemberCount = 1
	f.CreatedAt = now
	stored := *f
	r.families[f.ID] = &stored
	r.members = append(r.members, Membership{
		ID: int64(len(r.members) + 1), FamilyID: f.ID, UserID: f.OwnerID, Role: RoleAdmin, JoinedAt: now,
	})
	return nil
}

func (r *InMemoryRepository) InviteCodeExists(_ context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.families {
		if f.InviteCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) FindByID(_ context.Context, id int64) (*Family, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.families[id]
	if !ok {
		return nil, fmt.Errorf("family %d: %w", id, core.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func (r *InMemoryRepository) FindByInviteCode(_ context.Context, code string) (*Family, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.families {
		if f.InviteCode == code {
			cp := *f
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("family: %w", core.ErrNotFound)
}

func (r *InMemoryRepository) ListForUser(_ context.Context, userID int64) ([]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Summary{}
	for _, m := range r.members {
		if m.UserID == userID {
			out = append(out, Summary{Family: *r.families[m.FamilyID], Role: m.Role, JoinedAt: m.JoinedAt})
		}
	}
	return out, nil
}

func (r *InMemoryRepository) AddMember(_ context.Context, familyID, userID int64, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(familyID, userID) >= 0 {
		return fmt.Errorf("membership: %w", core.ErrConflict)
	}
	f, ok := r.families[familyID]
	if !ok {
		return fmt.Errorf("family %d: %w", familyID, core.ErrNotFound)
	}
	r.members = append(r.members, Membership{
		ID: int64(len(r.members) + 1), FamilyID: familyID, UserID: userID, Role: role, JoinedAt: time.Now().UTC(),
	})
	f.MemberCount++
	return nil
}

func (r *InMemoryRepository) RemoveMember(_ context.Context, familyID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(familyID, userID)
	if i < 0 {
		return fmt.Errorf("membership: %w", core.ErrNotFound)
	}
	r.members = append(r.members[:i], r.members[i+1:]...)
	if f, ok := r.families[familyID]; ok && f.MemberCount > 0 {
		f.MemberCount--
	}
	return nil
}

func (r *InMemoryRepository) GetMembership(_ context.Context, familyID, userID int64) (*Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(familyID, userID)
	if i < 0 {
		return nil, fmt.Errorf("membership: %w", core.ErrNotFound)
	}
	m := r.members[i]
	return &m, nil
}

func (r *InMemoryRepository) IsMember(_ context.Context, familyID, userID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(familyID, userID) >= 0, nil
}

func (r *InMemoryRepository) ListMembers(_ context.Context, familyID int64) ([]Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Member{}
	for _, m := range r.members {
		if m.FamilyID == familyID {
			u, ok := r.users[m.UserID]
			if !ok {
				u = MemberUser{ID: m.UserID}
			}
			out = append(out, Member{Membership: m, User: u})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *InMemoryRepository) SavePreferences(_ context.Context, p Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preferences[[2]int64{p.FamilyID, p.UserID}] = p
	return nil
}

// Preferences returns what SavePreferences stored. Used by tests.
func (r *InMemoryRepository) Preferences(familyID, userID int64) (Preferences, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.preferences[[2]int64{familyID, userID}]
	return p, ok
}

func (r *InMemoryRepository) indexOf(familyID, userID int64) int {
	for i, m := range r.members {
		if m.FamilyID == familyID && m.UserID == userID {
			return i
		}
	}
	return -1
}
