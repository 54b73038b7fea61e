package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stoik/mailhub/internal/models"
	"github.com/stoik/mailhub/services/mail-service/internal/accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret"))
}

func TestSignAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour, false)
	id := uuid.New()

	token, err := m.Sign(id)
	require.NoError(t, err)

	got, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = NewManager("other", time.Hour, false).Parse(token)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: id.String()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Parse(unsigned)
	assert.Error(t, err)
}

func TestExpiredSession(t *testing.T) {
	m := NewManager("secret", time.Hour, false)
	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestIssueCookie(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		sameSite   http.SameSite
	}{
		{"development", false, http.SameSiteLaxMode},
		{"production", true, http.SameSiteNoneMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("secret", 7*24*time.Hour, tt.production)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", nil)

			require.NoError(t, m.Issue(c, uuid.New()))

			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			cookie := cookies[0]
			assert.Equal(t, CookieName, cookie.Name)
			assert.True(t, cookie.HttpOnly)
			assert.Equal(t, tt.production, cookie.Secure)
			assert.Equal(t, tt.sameSite, cookie.SameSite)
			assert.Equal(t, 7*24*3600, cookie.MaxAge)
			assert.Equal(t, "/", cookie.Path)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	store := accounts.NewMemoryStore()
	user := &models.ApplicationUser{Email: "a@example.com", Name: "A", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(context.Background(), user))

	m := NewManager("secret", time.Hour, false)
	r := gin.New()
	r.GET("/me", m.RequireAuth(store), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": CurrentUser(c).Email})
	})

	valid, err := m.Sign(user.ID)
	require.NoError(t, err)
	ghost, err := m.Sign(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie string
		status int
		body   string
	}{
		{"no cookie", "", http.StatusUnauthorized, `{"error":"Not authenticated"}`},
		{"garbage", "garbage", http.StatusUnauthorized, `{"error":"Auth failed"}`},
		{"deleted user", ghost, http.StatusUnauthorized, `{"error":"Invalid session"}`},
		{"valid", valid, http.StatusOK, `{"email":"a@example.com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestState(t *testing.T) {
	m := NewManager("secret", time.Hour, false)
	state := NewState()
	assert.NotEmpty(t, state)
	assert.NotEqual(t, state, NewState())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/callback?state="+state, nil)
	c.Request.AddCookie(&http.Cookie{Name: StateCookieName, Value: state})

	assert.True(t, m.ConsumeState(c, state))
	assert.False(t, m.ConsumeState(c, "other"))

	c.Request = httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	assert.False(t, m.ConsumeState(c, ""))
}
