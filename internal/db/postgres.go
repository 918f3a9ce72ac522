package db

import (
	"context"
	"fmt"

	"foodsync/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ConnectPostgres opens the pool, pings it and bootstraps the schema.
func ConnectPostgres(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url not set")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	log.Info("connected to postgres")

	if err := InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	log.Info("schema initialized")

	return pool, nil
}

// InitSchema creates every table the application needs. Statements are
// idempotent so the API and the worker can both run it at startup.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var schema = []string{
	// -------------------------------
	// USERS (+ biometric profile)
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'member',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE users
		ADD COLUMN IF NOT EXISTS weight NUMERIC(5,2),
		ADD COLUMN IF NOT EXISTS height NUMERIC(5,2),
		ADD COLUMN IF NOT EXISTS age INTEGER,
		ADD COLUMN IF NOT EXISTS gender VARCHAR(10),
		ADD COLUMN IF NOT EXISTS activity_level VARCHAR(20),
		ADD COLUMN IF NOT EXISTS goal VARCHAR(20)`,

	// -------------------------------
	// FAMILIES
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS families (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		invite_code VARCHAR(20) UNIQUE NOT NULL,
		owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		member_count INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS family_members (
		id BIGSERIAL PRIMARY KEY,
		family_id BIGINT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role VARCHAR(20) NOT NULL DEFAULT 'member',
		nickname VARCHAR(50),
		joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (family_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS family_preferences (
		family_id BIGINT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		dietary_restrictions JSONB NOT NULL DEFAULT '[]',
		allergies JSONB NOT NULL DEFAULT '[]',
		favorite_categories JSONB NOT NULL DEFAULT '[]',
		cooking_skill_level VARCHAR(20),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (family_id, user_id)
	)`,

	// -------------------------------
	// FRIDGE INVENTORY
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS fridge_inventory (
		id BIGSERIAL PRIMARY KEY,
		family_id BIGINT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		custom_name VARCHAR(200),
		quantity NUMERIC(8,2) NOT NULL DEFAULT 1,
		unit VARCHAR(50),
		emoji VARCHAR(10),
		expiration_date DATE,
		purchase_date DATE,
		storage_location VARCHAR(10) NOT NULL DEFAULT 'fridge',
		added_by_user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		is_consumed BOOLEAN NOT NULL DEFAULT FALSE,
		consumed_at TIMESTAMPTZ,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS fridge_inventory_family_idx
		ON fridge_inventory (family_id, is_consumed, expiration_date)`,

	// -------------------------------
	// SHOPPING LIST
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS shopping_items (
		id BIGSERIAL PRIMARY KEY,
		family_id BIGINT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		custom_name VARCHAR(200) NOT NULL,
		quantity NUMERIC(8,2) NOT NULL DEFAULT 1,
		unit VARCHAR(50),
		priority VARCHAR(10) NOT NULL DEFAULT 'medium',
		notes TEXT,
		added_by_user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		is_purchased BOOLEAN NOT NULL DEFAULT FALSE,
		purchased_by_user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		purchased_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	// -------------------------------
	// FAMILY RECIPES
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS recipes (
		id BIGSERIAL PRIMARY KEY,
		family_id BIGINT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		title VARCHAR(200) NOT NULL,
		description TEXT,
		prep_time_minutes INTEGER,
		cook_time_minutes INTEGER,
		servings INTEGER NOT NULL DEFAULT 4,
		difficulty VARCHAR(10) NOT NULL DEFAULT 'medium',
		ingredients JSONB NOT NULL DEFAULT '[]',
		instructions JSONB NOT NULL DEFAULT '[]',
		tags JSONB NOT NULL DEFAULT '[]',
		is_ai_generated BOOLEAN NOT NULL DEFAULT FALSE,
		created_by_user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	// -------------------------------
	// RECEIPT SCANS
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS receipt_scans (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		family_id BIGINT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		object_key VARCHAR(500) NOT NULL,
		content_type VARCHAR(100) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		items JSONB,
		error_message TEXT,
		imported_at TIMESTAMPTZ,
		processed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS receipt_scans_status_idx
		ON receipt_scans (status, created_at)`,
}
