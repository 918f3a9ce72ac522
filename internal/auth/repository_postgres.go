package auth

import (
	"context"
	"errors"
	"fmt"

	"foodsync/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password, first_name, last_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, user.Email, user.Password, user.FirstName, user.LastName, user.Role, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("email %s: %w", user.Email, core.ErrConflict)
	}
	return err
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, where string, arg any) (*User, error) {
	user := &User{}
	err := r.db.QueryRow(ctx, `
		SELECT id, email, password, first_name, last_name, role, is_active, created_at
		FROM users `+where, arg,
	).Scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName,
		&user.LastName, &user.Role, &user.IsActive, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
