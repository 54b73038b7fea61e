// Package session handles password login state: bcrypt password hashes and a
// signed auth_token cookie carrying the application user id.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stoik/mailhub/internal/models"
	"github.com/stoik/mailhub/services/mail-service/internal/accounts"
	"golang.org/x/crypto/bcrypt"
)

const (
	CookieName      = "auth_token"
	StateCookieName = "oauth_state"

	stateMaxAge = 600
	userKey     = "session.user"
)

// UserLookup is the part of the account store the middleware needs.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.ApplicationUser, error)
}

// Manager issues and verifies session cookies.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewManager creates a Manager. In production cookies are Secure and
// SameSite=None so a separately hosted frontend can send them.
func NewManager(secret string, ttl time.Duration, production bool) *Manager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, secure: production}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Sign returns an HS256 token whose subject is the user id.
func (m *Manager) Sign(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies token and returns the user id it carries.
func (m *Manager) Parse(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.Subject)
}

// Issue signs a session for userID and sets it as a cookie.
func (m *Manager) Issue(c *gin.Context, userID uuid.UUID) error {
	token, err := m.Sign(userID)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}
	m.setCookie(c, CookieName, token, int(m.ttl.Seconds()))
	return nil
}

// Clear removes the session cookie.
func (m *Manager) Clear(c *gin.Context) {
	m.setCookie(c, CookieName, "", -1)
}

// SetState stores an OAuth state value for the callback to check.
func (m *Manager) SetState(c *gin.Context, state string) {
	m.setCookie(c, StateCookieName, state, stateMaxAge)
}

// ConsumeState clears the stored OAuth state and reports whether it
// matches got.
func (m *Manager) ConsumeState(c *gin.Context, got string) bool {
	want, err := c.Cookie(StateCookieName)
	m.setCookie(c, StateCookieName, "", -1)
	return err == nil && want != "" && want == got
}

func (m *Manager) setCookie(c *gin.Context, name, value string, maxAge int) {
	if m.secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(name, value, maxAge, "/", "", m.secure, true)
}

// RequireAuth rejects requests without a valid session and stores the
// current user on the context.
func (m *Manager) RequireAuth(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		userID, err := m.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Auth failed"})
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), userID)
		switch {
		case errors.Is(err, accounts.ErrUserNotFound), err == nil && user == nil:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		case err != nil:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Auth failed"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth.
func CurrentUser(c *gin.Context) *models.ApplicationUser {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.ApplicationUser); ok {
			return user
		}
	}
	return nil
}

// NewState returns a random URL-safe OAuth state value.
func NewState() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return base64.URLEncoding.EncodeToString(b)
}
