package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stoik/mailhub/internal/models"
	mailmodels "github.com/stoik/mailhub/services/mail-service/internal/models"
)

// PostgresStore keeps users in app_users and their accounts in linked_accounts.
// Upserts are a single INSERT ... ON CONFLICT keyed on (owner_id, external_id),
// so concurrent relinks for the same account converge on one row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool. The schema must already be migrated.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const userColumns = `id, email, name, password_hash, created_at, updated_at`

// CreateUser inserts a new application user.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.ApplicationUser) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO app_users (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, strings.ToLower(user.Email), user.Name, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByID loads a user and their linked accounts.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.ApplicationUser, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM app_users WHERE id = $1`, id)
}

// GetUserByEmail loads a user by email, case-insensitively.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.ApplicationUser, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM app_users WHERE email = $1`, strings.ToLower(email))
}

func (s *PostgresStore) getUser(ctx context.Context, query string, arg any) (*models.ApplicationUser, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[mailmodels.UserRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user := row.Model()
	user.LinkedAccounts, err = s.accounts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert inserts or merges a linked account atomically.
func (s *PostgresStore) Upsert(ctx context.Context, ownerID uuid.UUID, externalID string, profile models.Profile, cred models.Credential) error {
	var expiry *time.Time
	if !cred.Expiry.IsZero() {
		expiry = &cred.Expiry
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO linked_accounts (
			owner_id, external_id, email, name, picture,
			access_token, refresh_token, scope, token_type, expiry, updated_at
		)
		SELECT $1::uuid, $2::text, $3::text, $4::text, $5::text,
			$6::text, $7::text, $8::text, $9::text, $10::timestamptz, now()
		WHERE EXISTS (SELECT 1 FROM app_users WHERE id = $1::uuid)
		ON CONFLICT (owner_id, external_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			picture = EXCLUDED.picture,
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), linked_accounts.refresh_token),
			scope = EXCLUDED.scope,
			token_type = EXCLUDED.token_type,
			expiry = EXCLUDED.expiry,
			updated_at = EXCLUDED.updated_at`,
		ownerID, externalID, profile.Email, profile.Name, profile.Picture,
		cred.AccessToken, cred.RefreshToken, cred.Scope, cred.TokenType, expiry,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert linked account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List returns the owner's accounts without credentials.
func (s *PostgresStore) List(ctx context.Context, ownerID uuid.UUID) ([]models.PublicAccountView, error) {
	accounts, err := s.accounts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]models.PublicAccountView, 0, len(accounts))
	for _, acc := range accounts {
		views = append(views, acc.Public())
	}
	return views, nil
}

// resolveKey picks one row by external id, falling back to email.
const resolveKey = `
	SELECT external_id FROM linked_accounts
	WHERE owner_id = $1 AND (external_id = $2 OR (email <> '' AND email = $2))
	ORDER BY (external_id = $2) DESC, seq
	LIMIT 1`

// Remove deletes the account resolved by key.
func (s *PostgresStore) Remove(ctx context.Context, ownerID uuid.UUID, key string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM linked_accounts
		WHERE owner_id = $1 AND external_id = (`+resolveKey+`)`,
		ownerID, key,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove linked account: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Resolve returns the account matched by key, or nil.
func (s *PostgresStore) Resolve(ctx context.Context, ownerID uuid.UUID, key string) (*models.LinkedAccount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM linked_accounts
		WHERE owner_id = $1 AND external_id = (`+resolveKey+`)`,
		ownerID, key,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve linked account: %w", err)
	}
	accounts, err := scanAccounts(rows)
	if err != nil || len(accounts) == 0 {
		return nil, err
	}
	return &accounts[0], nil
}

// Close is a no-op; the pool is owned by the db package.
func (s *PostgresStore) Close() {}

const accountColumns = `external_id, email, name, picture,
	access_token, refresh_token, scope, token_type, expiry, updated_at`

func (s *PostgresStore) accounts(ctx context.Context, ownerID uuid.UUID) ([]models.LinkedAccount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM linked_accounts
		WHERE owner_id = $1
		ORDER BY seq`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query linked accounts: %w", err)
	}
	return scanAccounts(rows)
}

func scanAccounts(rows pgx.Rows) ([]models.LinkedAccount, error) {
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[mailmodels.LinkedAccountRow])
	if err != nil {
		return nil, fmt.Errorf("failed to scan linked accounts: %w", err)
	}
	accounts := make([]models.LinkedAccount, 0, len(records))
	for _, r := range records {
		accounts = append(accounts, r.Model())
	}
	return accounts, nil
}
