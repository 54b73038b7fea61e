package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stoik/mailhub/internal/models"
)

var (
	// ErrUserNotFound is returned when no application user matches.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned by CreateUser when the email is registered.
	ErrEmailTaken = errors.New("email already registered")
)

// Store persists application users and the linked accounts they own.
//
// Linked accounts are addressed by a key that is either the external account
// id or the account email. Resolution always tries the external id first and
// only then the email.
type Store interface {
	CreateUser(ctx context.Context, user *models.ApplicationUser) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.ApplicationUser, error)
	GetUserByEmail(ctx context.Context, email string) (*models.ApplicationUser, error)

	// Upsert inserts or updates the account keyed by (ownerID, externalID).
	// An empty RefreshToken keeps the stored one.
	Upsert(ctx context.Context, ownerID uuid.UUID, externalID string, profile models.Profile, cred models.Credential) error

	// List returns the owner's accounts in link order, without credentials.
	List(ctx context.Context, ownerID uuid.UUID) ([]models.PublicAccountView, error)

	// Remove deletes the account resolved by key and reports whether one existed.
	Remove(ctx context.Context, ownerID uuid.UUID, key string) (bool, error)

	// Resolve returns the account for key, or nil when the owner has none.
	Resolve(ctx context.Context, ownerID uuid.UUID, key string) (*models.LinkedAccount, error)

	Close()
}

// GetCredential returns the credential for key, or nil when no account matches.
func GetCredential(ctx context.Context, s Store, ownerID uuid.UUID, key string) (*models.Credential, error) {
	if key == "" {
		return nil, nil
	}
	acc, err := s.Resolve(ctx, ownerID, key)
	if err != nil || acc == nil {
		return nil, err
	}
	cred := acc.Credential
	return &cred, nil
}

// matchIndex applies the resolution order to an in-order slice: external id
// first, then email. It returns -1 when nothing matches.
func matchIndex(accounts []models.LinkedAccount, key string) int {
	for i := range accounts {
		if accounts[i].ExternalID == key {
			return i
		}
	}
	for i := range accounts {
		if accounts[i].Email != "" && accounts[i].Email == key {
			return i
		}
	}
	return -1
}

// merge applies an upsert onto an existing account.
func merge(existing models.LinkedAccount, profile models.Profile, cred models.Credential) models.LinkedAccount {
	refresh := existing.Credential.RefreshToken
	if cred.RefreshToken != "" {
		refresh = cred.RefreshToken
	}
	existing.Profile = profile
	existing.Credential = cred
	existing.Credential.RefreshToken = refresh
	return existing
}
