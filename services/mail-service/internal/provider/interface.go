package provider

import (
	"context"

	"github.com/stoik/mailhub/internal/models"
	"google.golang.org/api/gmail/v1"
)

// Format selects how much of a message the provider returns.
type Format string

const (
	// FormatMetadata returns headers, snippet and thread id only.
	FormatMetadata Format = "metadata"
	// FormatFull returns the complete MIME tree.
	FormatFull Format = "full"
)

// DefaultPageSize is the number of message ids requested per listing.
const DefaultPageSize = 100

// SummaryHeaders are the headers requested in metadata mode.
var SummaryHeaders = []string{"From", "Subject", "Date"}

// Provider executes mail calls on behalf of exactly one credential per call.
// Every error it returns is an *Error.
type Provider interface {
	// FetchProfile returns the external account id and profile for the credential.
	FetchProfile(ctx context.Context, cred models.Credential) (string, models.Profile, error)

	// ListMessages returns up to limit newest-first messages in metadata form.
	ListMessages(ctx context.Context, cred models.Credential, limit int64) ([]*gmail.Message, error)

	// GetMessage fetches one message in the requested format.
	GetMessage(ctx context.Context, cred models.Credential, id string, format Format) (*gmail.Message, error)

	// GetThread fetches every message of a thread in metadata form.
	GetThread(ctx context.Context, cred models.Credential, threadID string) (*gmail.Thread, error)
}
