package nutrition

import "context"

// Repository persists the biometric columns of a user.
type Repository interface {
	GetProfile(ctx context.Context, userID int64) (Profile, error)
	SaveProfile(ctx context.Context, userID int64, p BiometricProfile) error
}
