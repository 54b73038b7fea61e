package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationUser is the identity that owns zero or more linked mail accounts.
type ApplicationUser struct {
	ID             uuid.UUID       `json:"id"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	PasswordHash   string          `json:"-"`
	LinkedAccounts []LinkedAccount `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Credential is the token bundle issued by the provider for one linked account.
// It never leaves the server.
type Credential struct {
	AccessToken  string
	RefreshToken string
	Scope        string
	TokenType    string
	Expiry       time.Time
}

// Profile holds the public identity fields reported by the provider.
type Profile struct {
	Email   string
	Name    string
	Picture string
}

// LinkedAccount is one external mail identity connected to an ApplicationUser.
// ExternalID is unique within the owning user.
type LinkedAccount struct {
	ExternalID string
	Profile
	Credential Credential
	UpdatedAt  time.Time
}

// Public strips the credential bundle.
func (a LinkedAccount) Public() PublicAccountView {
	return PublicAccountView{
		ID:      a.ExternalID,
		Name:    a.Name,
		Email:   a.Email,
		Picture: a.Picture,
		SavedAt: a.UpdatedAt,
	}
}

// PublicAccountView is the client-facing shape of a linked account.
type PublicAccountView struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Picture string    `json:"picture"`
	SavedAt time.Time `json:"savedAt"`
}
