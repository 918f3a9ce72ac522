package auth

import "context"

// UserRepository defines the data-access contract.
// Service depends ONLY on this interface.
type UserRepository interface {
	// Create stores user and fills its ID and CreatedAt. It returns an error
	// wrapping core.ErrConflict when the email is taken.
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
}
