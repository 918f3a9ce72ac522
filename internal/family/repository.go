package family

import "context"

type Repository interface {
	// Create inserts the family and its owner as an admin member. It returns
	// core.ErrConflict when the invite code is taken.
	Create(ctx context.Context, f *Family) error
	InviteCodeExists(ctx context.Context, code string) (bool, error)
	FindByID(ctx context.Context, id int64) (*Family, error)
	FindByInviteCode(ctx context.Context, code string) (*Family, error)
	ListForUser(ctx context.Context, userID int64) ([]Summary, error)

	// AddMember returns core.ErrConflict when the user is already a member.
	AddMember(ctx context.Context, familyID, userID int64, role string) error
	RemoveMember(ctx context.Context, familyID, userID int64) error
	GetMembership(ctx context.Context, familyID, userID int64) (*Membership, error)
	IsMember(ctx context.Context, familyID, userID int64) (bool, error)
	ListMembers(ctx context.Context, familyID int64) ([]Member, error)

	SavePreferences(ctx context.Context, p Preferences) error
}
