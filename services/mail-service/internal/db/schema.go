package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
	-- Application users (password login owners of linked accounts)
	CREATE TABLE IF NOT EXISTS app_users (
	    id UUID PRIMARY KEY,
	    email VARCHAR(255) NOT NULL UNIQUE,
	    name VARCHAR(255) NOT NULL DEFAULT '',
	    password_hash TEXT NOT NULL,
	    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);

	-- Linked Google accounts, one row per (owner, external id)
	CREATE TABLE IF NOT EXISTS linked_accounts (
	    seq BIGSERIAL,
	    owner_id UUID NOT NULL REFERENCES app_users(id) ON DELETE CASCADE,
	    external_id VARCHAR(255) NOT NULL,
	    email VARCHAR(255) NOT NULL DEFAULT '',
	    name VARCHAR(255) NOT NULL DEFAULT '',
	    picture TEXT NOT NULL DEFAULT '',
	    access_token TEXT NOT NULL DEFAULT '',
	    refresh_token TEXT NOT NULL DEFAULT '',
	    scope TEXT NOT NULL DEFAULT '',
	    token_type VARCHAR(32) NOT NULL DEFAULT '',
	    expiry TIMESTAMP WITH TIME ZONE,
	    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	    PRIMARY KEY (owner_id, external_id)
	);

	CREATE INDEX IF NOT EXISTS idx_linked_accounts_owner_email ON linked_accounts(owner_id, email);
`

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
