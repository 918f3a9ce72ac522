package family

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleChild  = "child"
)

type Family struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	InviteCode  string    `json:"inviteCode"`
	OwnerID     int64     `json:"ownerId"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Membership struct {
	ID       int64     `json:"id"`
	FamilyID int64     `json:"familyId"`
	UserID   int64     `json:"userId"`
	Role     string    `json:"role"`
	Nickname *string   `json:"nickname"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Summary is a family as seen by one of its members.
type Summary struct {
	Family
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type MemberUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type Member struct {
	Membership
	User MemberUser `json:"user"`
}

type Detail struct {
	Family
	Members []Member `json:"members"`
}

type Preferences struct {
	FamilyID            int64    `json:"familyId"`
	UserID              int64    `json:"userId"`
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	Allergies           []string `json:"allergies"`
	FavoriteCategories  []string `json:"favoriteCategories"`
	CookingSkillLevel   *string  `json:"cookingSkillLevel"`
}
