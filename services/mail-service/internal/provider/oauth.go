package provider

import (
	"context"
	"net/http"

	"github.com/stoik/mailhub/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// Scopes requested when linking an account.
var Scopes = []string{gmail.GmailReadonlyScope, "profile", "email"}

// OAuthOptions configures the authorization-code flow.
type OAuthOptions struct {
	ClientID     string
	ClientSecret string
	// AuthURL and TokenURL override Google's endpoints when set.
	AuthURL  string
	TokenURL string
	// HTTPClient is used for the code exchange.
	HTTPClient *http.Client
}

// OAuth builds consent URLs and exchanges authorization codes.
// The redirect URL is supplied per call since it depends on the request.
type OAuth struct {
	config     oauth2.Config
	httpClient *http.Client
}

// NewOAuth creates an OAuth helper.
func NewOAuth(opts OAuthOptions) *OAuth {
	endpoint := google.Endpoint
	if opts.AuthURL != "" {
		endpoint.AuthURL = opts.AuthURL
	}
	if opts.TokenURL != "" {
		endpoint.TokenURL = opts.TokenURL
	}
	return &OAuth{
		config: oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       Scopes,
		},
		httpClient: opts.HTTPClient,
	}
}

// AuthURLOptions are the per-request parts of a consent URL.
type AuthURLOptions struct {
	State       string
	RedirectURL string
	// Force asks the provider to show the consent screen again, which makes
	// it reissue a refresh token.
	Force     bool
	LoginHint string
}

// AuthCodeURL returns the consent URL for an offline-access link.
func (o *OAuth) AuthCodeURL(opts AuthURLOptions) string {
	cfg := o.config
	cfg.RedirectURL = opts.RedirectURL

	params := []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	}
	if opts.Force {
		params = append(params, oauth2.ApprovalForce)
	}
	if opts.LoginHint != "" {
		params = append(params, oauth2.SetAuthURLParam("login_hint", opts.LoginHint))
	}
	return cfg.AuthCodeURL(opts.State, params...)
}

// Exchange trades an authorization code for a credential bundle. The
// redirect URL must match the one used to build the consent URL.
func (o *OAuth) Exchange(ctx context.Context, code, redirectURL string) (models.Credential, error) {
	cfg := o.config
	cfg.RedirectURL = redirectURL
	if o.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return models.Credential{}, Classify("exchange code", err)
	}

	cred := models.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		cred.Scope = scope
	}
	return cred, nil
}
