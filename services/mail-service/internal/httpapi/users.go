package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stoik/mailhub/internal/models"
	"github.com/stoik/mailhub/services/mail-service/internal/accounts"
	"github.com/stoik/mailhub/services/mail-service/internal/session"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func userResponse(u *models.ApplicationUser) gin.H {
	return gin.H{"id": u.ID.String(), "email": u.Email, "name": u.Name}
}

func (h *handler) signup(c *gin.Context) {
	var req credentialsRequest
	_ = c.ShouldBindJSON(&req)
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	hash, err := session.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign up", "details": err.Error()})
		return
	}
	name := req.Name
	if name == "" {
		name, _, _ = strings.Cut(req.Email, "@")
	}

	user := &models.ApplicationUser{Email: req.Email, Name: name, PasswordHash: hash}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, accounts.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		h.Logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign up", "details": err.Error()})
		return
	}

	if err := h.Sessions.Issue(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign up", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

func (h *handler) login(c *gin.Context) {
	var req credentialsRequest
	_ = c.ShouldBindJSON(&req)
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.Store.GetUserByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, accounts.ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.Logger.Error().Err(err).Msg("Failed to load user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login", "details": err.Error()})
		return
	}
	if !session.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := h.Sessions.Issue(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

func (h *handler) logout(c *gin.Context) {
	h.Sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) me(c *gin.Context) {
	user := session.CurrentUser(c)
	views := make([]models.PublicAccountView, 0, len(user.LinkedAccounts))
	for _, acc := range user.LinkedAccounts {
		views = append(views, acc.Public())
	}

	resp := userResponse(user)
	resp["accounts"] = views
	c.JSON(http.StatusOK, resp)
}
