package redirect

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newRequest(host string, headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	r.Host = host
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestResolveExplicitBaseURL(t *testing.T) {
	res := NewResolver("https://api.example.com/", "", zerolog.Nop())
	assert.Equal(t, "https://api.example.com/auth/callback", res.Resolve(nil))

	res = NewResolver("https://api.example.com/auth/callback/", "", zerolog.Nop())
	assert.Equal(t, "https://api.example.com/auth/callback", res.Resolve(nil))
}

func TestResolveLocalBaseOverriddenByHostedRequest(t *testing.T) {
	res := NewResolver("http://localhost:5000", "", zerolog.Nop())

	r := newRequest("internal:10000", map[string]string{
		"X-Forwarded-Host":  "app.example.com",
		"X-Forwarded-Proto": "https, http",
	})
	assert.Equal(t, "https://app.example.com/auth/callback", res.Resolve(r))

	local := newRequest("localhost:5000", nil)
	assert.Equal(t, "http://localhost:5000/auth/callback", res.Resolve(local))
}

func TestResolvePublicBaseWinsOverRequest(t *testing.T) {
	res := NewResolver("https://api.example.com", "", zerolog.Nop())
	r := newRequest("other.example.org", nil)
	assert.Equal(t, "https://api.example.com/auth/callback", res.Resolve(r))
}

func TestResolveRedirectURI(t *testing.T) {
	res := NewResolver("", "http://127.0.0.1:5000/auth/callback", zerolog.Nop())

	assert.Equal(t, "http://127.0.0.1:5000/auth/callback", res.Resolve(nil))
	assert.Equal(t, "http://mail.example.com/auth/callback",
		res.Resolve(newRequest("", map[string]string{"X-Forwarded-Host": "mail.example.com, proxy"})))
}

func TestResolveMalformedConfigFallsThrough(t *testing.T) {
	res := NewResolver("::not a url", "http://0.0.0.0:5000/auth/callback", zerolog.Nop())
	assert.Equal(t, "http://0.0.0.0:5000/auth/callback", res.Resolve(nil))

	res = NewResolver("::not a url", "", zerolog.Nop())
	assert.Equal(t, "http://api.internal/auth/callback", res.Resolve(newRequest("api.internal", nil)))
}

func TestResolveFromRequest(t *testing.T) {
	res := NewResolver("", "", zerolog.Nop())

	r := newRequest("secure.example.com", nil)
	r.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https://secure.example.com/auth/callback", res.Resolve(r))
}

func TestResolveFallback(t *testing.T) {
	res := NewResolver("", "", zerolog.Nop())
	target, err := res.resolve(newRequest("", nil))
	assert.ErrorIs(t, err, ErrConfigurationAmbiguous)
	assert.Equal(t, DefaultURL, target)
	assert.Equal(t, DefaultURL, res.Resolve(nil))
}

func TestIsLocalHost(t *testing.T) {
	for host, want := range map[string]bool{
		"localhost:5000":   true,
		"LOCALHOST":        true,
		"127.0.0.1:8080":   true,
		"0.0.0.0:5000":     true,
		"app.example.com":  false,
		"10.0.0.5":         false,
		"my-localhost.dev": true,
	} {
		assert.Equal(t, want, isLocalHost(host), host)
	}
}
