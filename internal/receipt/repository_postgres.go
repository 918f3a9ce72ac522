package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foodsync/internal/core"
	"foodsync/internal/llm"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db    *pgxpool.Pool
	lease time.Duration
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db, lease: DefaultProcessingLease}
}

const scanColumns = `id, user_id, family_id, object_key, content_type, status, items,
	error_message, imported_at, processed_at, created_at`

func scanRow(row pgx.Row) (*Scan, error) {
	var (
		s     Scan
		items []byte
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.FamilyID, &s.ObjectKey, &s.ContentType, &s.Status, &items,
		&s.ErrorMessage, &s.ImportedAt, &s.ProcessedAt, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Items = []llm.ReceiptItem{}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &s.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	}
	return &s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, s *Scan) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO receipt_scans (id, user_id, family_id, object_key, content_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, s.ID, s.UserID, s.FamilyID, s.ObjectKey, s.ContentType, s.Status).Scan(&s.CreatedAt)
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Scan, error) {
	s, err := scanRow(r.db.QueryRow(ctx, `SELECT `+scanColumns+` FROM receipt_scans WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("receipt scan %s: %w", id, core.ErrNotFound)
	}
	return s, err
}

func (r *PostgresRepository) ClaimPending(ctx context.Context) (*Scan, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	s, err := scanRow(tx.QueryRow(ctx, `
		SELECT `+scanColumns+`
		FROM receipt_scans
		WHERE status = 'pending'
		   OR (status = 'processing' AND updated_at < now() - make_interval(secs => $1))
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, r.lease.Seconds()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE receipt_scans
		SET status = 'processing', updated_at = now()
		WHERE id = $1
	`, s.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.Status = StatusProcessing
	return s, nil
}

func (r *PostgresRepository) Complete(ctx context.Context, id uuid.UUID, items []llm.ReceiptItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		UPDATE receipt_scans
		SET status = 'completed', items = $2, error_message = NULL,
		    processed_at = now(), updated_at = now()
		WHERE id = $1
	`, id, raw)
	return err
}

func (r *PostgresRepository) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE receipt_scans
		SET status = 'failed', error_message = $2,
		    processed_at = now(), updated_at = now()
		WHERE id = $1
	`, id, reason)
	return err
}

func (r *PostgresRepository) ClaimImport(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE receipt_scans
		SET imported_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'completed' AND imported_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("receipt scan %s is not importable: %w", id, core.ErrConflict)
	}
	return nil
}

func (r *PostgresRepository) ReleaseImport(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE receipt_scans
		SET imported_at = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}
