package core

import "context"

// MembershipChecker answers whether a user belongs to a family. Every
// family-scoped resource (fridge, shopping, recipes, nutrition, receipts)
// guards its operations with it.
type MembershipChecker interface {
	IsMember(ctx context.Context, familyID, userID int64) (bool, error)
}

// RequireMember returns ErrForbidden when userID is not in familyID.
func RequireMember(ctx context.Context, m MembershipChecker, familyID, userID int64) error {
	ok, err := m.IsMember(ctx, familyID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
