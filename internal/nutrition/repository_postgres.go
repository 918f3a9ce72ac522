package nutrition

import (
	"context"
	"errors"
	"fmt"

	"foodsync/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetProfile(ctx context.Context, userID int64) (Profile, error) {
	var (
		p                      Profile
		gender, activity, goal *string
	)
	err := r.db.QueryRow(ctx, `
		SELECT weight::float8, height::float8, age, gender, activity_level, goal
		FROM users
		WHERE id = $1
	`, userID).Scan(&p.Weight, &p.Height, &p.Age, &gender, &activity, &goal)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, fmt.Errorf("user %d: %w", userID, core.ErrNotFound)
	}
	if err != nil {
		return p, err
	}

	if gender != nil {
		g := Gender(*gender)
		p.Gender = &g
	}
	if activity != nil {
		a := ActivityLevel(*activity)
		p.ActivityLevel = &a
	}
	if goal != nil {
		g := Goal(*goal)
		p.Goal = &g
	}
	return p, nil
}

func (r *PostgresRepository) SaveProfile(ctx context.Context, userID int64, p BiometricProfile) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET weight = $2, height = $3, age = $4, gender = $5, activity_level = $6, goal = $7,
		    updated_at = now()
		WHERE id = $1
	`, userID, p.Weight, p.Height, p.Age, string(p.Gender), string(p.ActivityLevel), string(p.Goal))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", userID, core.ErrNotFound)
	}
	return nil
}
