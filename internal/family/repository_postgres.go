package family

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"foodsync/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *PostgresRepository) Create(ctx context.Context, f *Family) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO families (name, invite_code, owner_id, member_count)
		VALUES ($1, $2, $3, 1)
		RETURNING id, member_count, created_at
	`, f.Name, f.InviteCode, f.OwnerID).Scan(&f.ID, &f.MemberCount, &f.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("invite code %s: %w", f.InviteCode, core.ErrConflict)
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO family_members (family_id, user_id, role)
		VALUES ($1, $2, $3)
	`, f.ID, f.OwnerID, RoleAdmin); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM families WHERE invite_code = $1)`, code,
	).Scan(&exists)
	return exists, err
}

const familyColumns = `f.id, f.name, f.invite_code, f.owner_id, f.member_count, f.created_at`

func scanFamily(row pgx.Row, f *Family, extra ...any) error {
	dest := append([]any{&f.ID, &f.Name, &f.InviteCode, &f.OwnerID, &f.MemberCount, &f.CreatedAt}, extra...)
	return row.Scan(dest...)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*Family, error) {
	return r.findOne(ctx, `f.id = $1`, id)
}

func (r *PostgresRepository) FindByInviteCode(ctx context.Context, code string) (*Family, error) {
	return r.findOne(ctx, `f.invite_code = $1`, code)
}

func (r *PostgresRepository) findOne(ctx context.Context, where string, arg any) (*Family, error) {
	f := &Family{}
	err := scanFamily(r.db.QueryRow(ctx, `SELECT `+familyColumns+` FROM families f WHERE `+where, arg), f)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("family: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID int64) ([]Summary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+familyColumns+`, m.role, m.joined_at
		FROM family_members m
		JOIN families f ON f.id = m.family_id
		WHERE m.user_id = $1
		ORDER BY m.joined_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := scanFamily(rows, &s.Family, &s.Role, &s.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) AddMember(ctx context.Context, familyID, userID int64, role string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO family_members (family_id, user_id, role)
		VALUES ($1, $2, $3)
	`, familyID, userID, role)
	if isUniqueViolation(err) {
		return fmt.Errorf("membership: %w", core.ErrConflict)
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE families SET member_count = member_count + 1, updated_at = now()
		WHERE id = $1
	`, familyID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) RemoveMember(ctx context.Context, familyID, userID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM family_members WHERE family_id = $1 AND user_id = $2
	`, familyID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("membership: %w", core.ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE families SET member_count = GREATEST(member_count - 1, 0), updated_at = now()
		WHERE id = $1
	`, familyID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) GetMembership(ctx context.Context, familyID, userID int64) (*Membership, error) {
	m := &Membership{}
	err := r.db.QueryRow(ctx, `
		SELECT id, family_id, user_id, role, nickname, joined_at
		FROM family_members
		WHERE family_id = $1 AND user_id = $2
	`, familyID, userID).Scan(&m.ID, &m.FamilyID, &m.UserID, &m.Role, &m.Nickname, &m.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("membership: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, familyID int64) ([]Member, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.family_id, m.user_id, m.role, m.nickname, m.joined_at,
		       u.id, u.first_name, u.last_name, u.email
		FROM family_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.family_id = $1
		ORDER BY m.joined_at
	`, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(
			&m.ID, &m.FamilyID, &m.UserID, &m.Role, &m.Nickname, &m.JoinedAt,
			&m.User.ID, &m.User.FirstName, &m.User.LastName, &m.User.Email,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) SavePreferences(ctx context.Context, p Preferences) error {
	dietary, _ := json.Marshal(nonNil(p.DietaryRestrictions))
	allergies, _ := json.Marshal(nonNil(p.Allergies))
	favorites, _ := json.Marshal(nonNil(p.FavoriteCategories))

	_, err := r.db.Exec(ctx, `
		INSERT INTO family_preferences
			(family_id, user_id, dietary_restrictions, allergies, favorite_categories, cooking_skill_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (family_id, user_id) DO UPDATE SET
			dietary_restrictions = EXCLUDED.dietary_restrictions,
			allergies = EXCLUDED.allergies,
			favorite_categories = EXCLUDED.favorite_categories,
			cooking_skill_level = EXCLUDED.cooking_skill_level,
			updated_at = now()
	`, p.FamilyID, p.UserID, dietary, allergies, favorites, p.CookingSkillLevel)
	return err
}

// IsMember implements core.MembershipChecker.
func (r *PostgresRepository) IsMember(ctx context.Context, familyID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM family_members WHERE family_id = $1 AND user_id = $2)
	`, familyID, userID).Scan(&exists)
	return exists, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
