package shopping

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

const itemColumns = `id, family_id, custom_name, quantity::float8, unit, priority, notes,
	added_by_user_id, is_purchased, purchased_by_user_id, purchased_at, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(
		&it.ID, &it.FamilyID, &it.Name, &it.Quantity, &it.Unit, &it.Priority, &it.Notes,
		&it.AddedByUserID, &it.IsPurchased, &it.PurchasedByUserID, &it.PurchasedAt,
		&it.CreatedAt, &it.UpdatedAt,
	)
	return it, err
}

func (r *PostgresRepository) List(ctx context.Context, familyID int64) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM shopping_items
		WHERE family_id = $1
		ORDER BY is_purchased ASC,
		         CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END,
		         created_at DESC
	`, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, it *Item) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO shopping_items (family_id, custom_name, quantity, unit, priority, notes, added_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, it.FamilyID, it.Name, it.Quantity, it.Unit, it.Priority, it.Notes, it.AddedByUserID,
	).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Item, error) {
	it, err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM shopping_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("shopping item %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *PostgresRepository) Update(ctx context.Context, it *Item) error {
	err := r.db.QueryRow(ctx, `
		UPDATE shopping_items
		SET custom_name = $2, quantity = $3, unit = $4, priority = $5, notes = $6,
		    is_purchased = $7, purchased_by_user_id = $8, purchased_at = $9,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, it.ID, it.Name, it.Quantity, it.Unit, it.Priority, it.Notes,
		it.IsPurchased, it.PurchasedByUserID, it.PurchasedAt,
	).Scan(&it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("shopping item %d: %w", it.ID, core.ErrNotFound)
	}
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM shopping_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shopping item %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) DeletePurchased(ctx context.Context, familyID int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM shopping_items WHERE family_id = $1 AND is_purchased = TRUE`, familyID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
