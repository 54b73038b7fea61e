package redirect

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// CallbackPath is the path Google redirects to after consent.
	CallbackPath = "/auth/callback"

	// DefaultURL is used when nothing else can be determined.
	DefaultURL = "http://localhost:5000" + CallbackPath
)

// ErrConfigurationAmbiguous is reported when resolution falls through every tier.
var ErrConfigurationAmbiguous = errors.New("redirect target could not be determined from configuration or request")

// Resolver computes the OAuth callback URL for an inbound request.
type Resolver struct {
	baseURL     string
	redirectURI string
	log         zerolog.Logger
}

// NewResolver creates a resolver. baseURL is the explicit backend base URL and
// takes priority over redirectURI; either may be empty.
func NewResolver(baseURL, redirectURI string, logger zerolog.Logger) *Resolver {
	return &Resolver{
		baseURL:     strings.TrimSpace(baseURL),
		redirectURI: strings.TrimSpace(redirectURI),
		log:         logger.With().Str("component", "redirect").Logger(),
	}
}

// Resolve returns the callback URL for r. r may be nil.
func (res *Resolver) Resolve(r *http.Request) string {
	target, err := res.resolve(r)
	if err != nil {
		res.log.Warn().Err(err).Str("fallback", target).Msg("Using hardcoded OAuth redirect")
	}
	return target
}

func (res *Resolver) resolve(r *http.Request) (string, error) {
	requestURI := requestCallbackURL(r)

	if res.baseURL != "" {
		if target, ok := preferRequest(ensureCallbackPath(res.baseURL), requestURI); ok {
			return target, nil
		}
	}

	if res.redirectURI != "" {
		if target, ok := preferRequest(res.redirectURI, requestURI); ok {
			return target, nil
		}
	}

	if requestURI != "" {
		return requestURI, nil
	}

	return DefaultURL, ErrConfigurationAmbiguous
}

// preferRequest returns configured unless it points at a local host while the
// request arrived on a public one. ok is false when configured is unparseable.
func preferRequest(configured, requestURI string) (string, bool) {
	configuredHost := hostOf(configured)
	if configuredHost == "" {
		return "", false
	}
	if requestHost := hostOf(requestURI); requestHost != "" &&
		isLocalHost(configuredHost) && !isLocalHost(requestHost) {
		return requestURI, true
	}
	return configured, true
}

func ensureCallbackPath(base string) string {
	trimmed := strings.TrimRight(base, "/")
	if strings.HasSuffix(trimmed, CallbackPath) {
		return trimmed
	}
	return trimmed + CallbackPath
}

// requestCallbackURL builds the callback from forwarded headers, falling back
// to the request's own scheme and host. Empty when no host is known.
func requestCallbackURL(r *http.Request) string {
	if r == nil {
		return ""
	}

	proto := firstValue(r.Header.Get("X-Forwarded-Proto"))
	if proto == "" {
		if r.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}

	host := firstValue(r.Header.Get("X-Forwarded-Host"))
	if host == "" {
		host = r.Host
	}
	if host == "" {
		return ""
	}

	return proto + "://" + host + CallbackPath
}

func firstValue(header string) string {
	first, _, _ := strings.Cut(header, ",")
	return strings.TrimSpace(first)
}

func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return ""
	}
	return u.Host
}

// isLocalHost is a loose prefix/substring check, not an address parse.
func isLocalHost(host string) bool {
	lower := strings.ToLower(host)
	return strings.Contains(lower, "localhost") ||
		strings.HasPrefix(lower, "127.") ||
		strings.HasPrefix(lower, "0.0.0.0")
}
