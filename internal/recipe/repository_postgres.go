package recipe

import (
	"context"
	"encoding/json"
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

const recipeColumns = `id, family_id, title, description, prep_time_minutes, cook_time_minutes,
	servings, difficulty, ingredients, instructions, tags, is_ai_generated,
	created_by_user_id, created_at, updated_at`

func scanRecipe(row pgx.Row) (FamilyRecipe, error) {
	var (
		r                                FamilyRecipe
		ingredients, instructions, tags []byte
	)
	err := row.Scan(
		&r.ID, &r.FamilyID, &r.Title, &r.Description, &r.PrepTimeMinutes, &r.CookTimeMinutes,
		&r.Servings, &r.Difficulty, &ingredients, &instructions, &tags, &r.IsAIGenerated,
		&r.CreatedByUserID, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(ingredients, &r.Ingredients); err != nil {
		return r, fmt.Errorf("decode ingredients: %w", err)
	}
	if err := json.Unmarshal(instructions, &r.Instructions); err != nil {
		return r, fmt.Errorf("decode instructions: %w", err)
	}
	if err := json.Unmarshal(tags, &r.Tags); err != nil {
		return r, fmt.Errorf("decode tags: %w", err)
	}
	return r, nil
}

func encodeLists(r *FamilyRecipe) (ingredients, instructions, tags []byte, err error) {
	if ingredients, err = json.Marshal(r.Ingredients); err != nil {
		return
	}
	if instructions, err = json.Marshal(r.Instructions); err != nil {
		return
	}
	tags, err = json.Marshal(r.Tags)
	return
}

func (p *PostgresRepository) ListByFamily(ctx context.Context, familyID int64) ([]FamilyRecipe, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE family_id = $1
		ORDER BY created_at DESC
	`, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []FamilyRecipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresRepository) Create(ctx context.Context, r *FamilyRecipe) error {
	ingredients, instructions, tags, err := encodeLists(r)
	if err != nil {
		return err
	}
	return p.db.QueryRow(ctx, `
		INSERT INTO recipes (
			family_id, title, description, prep_time_minutes, cook_time_minutes,
			servings, difficulty, ingredients, instructions, tags, is_ai_generated,
			created_by_user_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, r.FamilyID, r.Title, r.Description, r.PrepTimeMinutes, r.CookTimeMinutes,
		r.Servings, r.Difficulty, ingredients, instructions, tags, r.IsAIGenerated,
		r.CreatedByUserID,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

func (p *PostgresRepository) Get(ctx context.Context, id int64) (*FamilyRecipe, error) {
	r, err := scanRecipe(p.db.QueryRow(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("recipe %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *PostgresRepository) Update(ctx context.Context, r *FamilyRecipe) error {
	ingredients, instructions, tags, err := encodeLists(r)
	if err != nil {
		return err
	}
	err = p.db.QueryRow(ctx, `
		UPDATE recipes
		SET title = $2, description = $3, prep_time_minutes = $4, cook_time_minutes = $5,
		    servings = $6, difficulty = $7, ingredients = $8, instructions = $9, tags = $10,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, r.ID, r.Title, r.Description, r.PrepTimeMinutes, r.CookTimeMinutes,
		r.Servings, r.Difficulty, ingredients, instructions, tags,
	).Scan(&r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("recipe %d: %w", r.ID, core.ErrNotFound)
	}
	return err
}

func (p *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recipe %d: %w", id, core.ErrNotFound)
	}
	return nil
}
