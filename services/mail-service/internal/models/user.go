package models

import (
	"time"

	"github.com/google/uuid"
	shared "github.com/stoik/mailhub/internal/models"
)

// UserRow is an app_users row (password hash included, never serialized).
type UserRow struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r UserRow) Model() shared.ApplicationUser {
	return shared.ApplicationUser{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// LinkedAccountRow is a linked_accounts row.
type LinkedAccountRow struct {
	ExternalID   string     `db:"external_id"`
	Email        string     `db:"email"`
	Name         string     `db:"name"`
	Picture      string     `db:"picture"`
	AccessToken  string     `db:"access_token"`
	RefreshToken string     `db:"refresh_token"`
	Scope        string     `db:"scope"`
	TokenType    string     `db:"token_type"`
	Expiry       *time.Time `db:"expiry"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (r LinkedAccountRow) Model() shared.LinkedAccount {
	acc := shared.LinkedAccount{
		ExternalID: r.ExternalID,
		Profile: shared.Profile{
			Email:   r.Email,
			Name:    r.Name,
			Picture: r.Picture,
		},
		Credential: shared.Credential{
			AccessToken:  r.AccessToken,
			RefreshToken: r.RefreshToken,
			Scope:        r.Scope,
			TokenType:    r.TokenType,
		},
		UpdatedAt: r.UpdatedAt,
	}
	if r.Expiry != nil {
		acc.Credential.Expiry = *r.Expiry
	}
	return acc
}
