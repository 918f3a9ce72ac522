package fridge

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const itemColumns = `id, family_id, custom_name, quantity::float8, unit, emoji,
	expiration_date, purchase_date, storage_location, added_by_user_id,
	is_consumed, consumed_at, notes, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	var name *string
	err := row.Scan(
		&it.ID, &it.FamilyID, &name, &it.Quantity, &it.Unit, &it.Emoji,
		&it.ExpirationDate, &it.PurchaseDate, &it.StorageLocation, &it.AddedByUserID,
		&it.IsConsumed, &it.ConsumedAt, &it.Notes, &it.CreatedAt, &it.UpdatedAt,
	)
	if name != nil {
		it.Name = *name
	}
	return it, err
}

func (r *PostgresRepository) query(ctx context.Context, sql string, args ...any) ([]Item, error) {
	rows, err := r.db.Query(ctx, sql, args...)
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

func (r *PostgresRepository) List(ctx context.Context, familyID int64) ([]Item, error) {
	return r.query(ctx, `
		SELECT `+itemColumns+`
		FROM fridge_inventory
		WHERE family_id = $1 AND is_consumed = FALSE
		ORDER BY expiration_date ASC NULLS LAST, created_at DESC
	`, familyID)
}

func (r *PostgresRepository) ListExpiring(ctx context.Context, familyID int64, until time.Time) ([]Item, error) {
	return r.query(ctx, `
		SELECT `+itemColumns+`
		FROM fridge_inventory
		WHERE family_id = $1
		  AND is_consumed = FALSE
		  AND expiration_date IS NOT NULL
		  AND expiration_date <= $2
		ORDER BY expiration_date ASC
	`, familyID, until)
}

const insertItem = `
	INSERT INTO fridge_inventory (
		family_id, custom_name, quantity, unit, emoji, expiration_date,
		purchase_date, storage_location, added_by_user_id, notes
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id, created_at, updated_at
`

func insertArgs(it *Item) []any {
	return []any{
		it.FamilyID, it.Name, it.Quantity, it.Unit, it.Emoji, it.ExpirationDate,
		it.PurchaseDate, it.StorageLocation, it.AddedByUserID, it.Notes,
	}
}

func (r *PostgresRepository) Create(ctx context.Context, it *Item) error {
	return r.db.QueryRow(ctx, insertItem, insertArgs(it)...).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
}

func (r *PostgresRepository) CreateBatch(ctx context.Context, items []*Item) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, it := range items {
		if err := tx.QueryRow(ctx, insertItem, insertArgs(it)...).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return fmt.Errorf("insert %q: %w", it.Name, err)
		}
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Item, error) {
	it, err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM fridge_inventory WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("fridge item %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *PostgresRepository) Update(ctx context.Context, it *Item) error {
	err := r.db.QueryRow(ctx, `
		UPDATE fridge_inventory
		SET custom_name = $2, quantity = $3, unit = $4, expiration_date = $5,
		    storage_location = $6, notes = $7, is_consumed = $8, consumed_at = $9,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, it.ID, it.Name, it.Quantity, it.Unit, it.ExpirationDate,
		it.StorageLocation, it.Notes, it.IsConsumed, it.ConsumedAt,
	).Scan(&it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("fridge item %d: %w", it.ID, core.ErrNotFound)
	}
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM fridge_inventory WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("fridge item %d: %w", id, core.ErrNotFound)
	}
	return nil
}
