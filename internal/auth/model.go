package auth

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User is the domain entity.
type User struct {
	ID        int64
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	IsActive  bool
	CreatedAt time.Time
}

// UserView is the JSON shape returned to clients. It never carries the hash.
type UserView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Token is the bearer token handed to clients.
type Token struct {
	Type      string    `json:"type"`
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}
