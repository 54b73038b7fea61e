// Package httpapi exposes the mail service over HTTP with gin.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stoik/mailhub/services/mail-service/internal/accounts"
	"github.com/stoik/mailhub/services/mail-service/internal/mail"
	"github.com/stoik/mailhub/services/mail-service/internal/provider"
	"github.com/stoik/mailhub/services/mail-service/internal/redirect"
	"github.com/stoik/mailhub/services/mail-service/internal/session"
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	Store       accounts.Store
	Sessions    *session.Manager
	OAuth       *provider.OAuth
	Provider    provider.Provider
	Mail        *mail.Service
	Redirect    *redirect.Resolver
	FrontendURL string
	Logger      zerolog.Logger
}

type handler struct {
	Deps
}

// NewRouter wires every route onto a new gin engine.
func NewRouter(d Deps) *gin.Engine {
	h := &handler{Deps: d}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Logger), cors(d.FrontendURL))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := d.Sessions.RequireAuth(d.Store)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.signup)
		auth.POST("/login", h.login)
		auth.POST("/logout", h.logout)
		auth.GET("/me", requireAuth, h.me)

		auth.GET("/google", requireAuth, h.startLink)
		auth.GET("/callback", requireAuth, h.finishLink)

		auth.GET("/users", requireAuth, h.listAccounts)
		auth.DELETE("/users/:id", requireAuth, h.removeAccount)
		auth.POST("/users", func(c *gin.Context) {
			c.JSON(http.StatusGone, gin.H{"error": "Deprecated. Accounts are saved during OAuth callback."})
		})
	}

	gmail := r.Group("/gmail", requireAuth)
	{
		gmail.GET("/emails", h.listEmails)
		gmail.GET("/message", h.getMessage)
	}

	return r
}
