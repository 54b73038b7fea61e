package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stoik/mailhub/services/mail-service/internal/provider"
	"github.com/stoik/mailhub/services/mail-service/internal/session"
)

// startLink redirects to the provider consent screen.
func (h *handler) startLink(c *gin.Context) {
	state := session.NewState()
	h.Sessions.SetState(c, state)

	url := h.OAuth.AuthCodeURL(provider.AuthURLOptions{
		State:       state,
		RedirectURL: h.Redirect.Resolve(c.Request),
		Force:       c.Query("force") == "true",
		LoginHint:   c.Query("login_hint"),
	})
	c.Redirect(http.StatusFound, url)
}

// finishLink exchanges the code, reads the profile and upserts the account
// under the signed-in user.
func (h *handler) finishLink(c *gin.Context) {
	if !h.Sessions.ConsumeState(c, c.Query("state")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	if errMsg := c.Query("error"); errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization denied", "details": errMsg})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	ctx := c.Request.Context()
	user := session.CurrentUser(c)

	cred, err := h.OAuth.Exchange(ctx, code, h.Redirect.Resolve(c.Request))
	if err != nil {
		h.respondProviderError(c, err, "Failed to link account")
		return
	}
	externalID, profile, err := h.Provider.FetchProfile(ctx, cred)
	if err != nil {
		h.respondProviderError(c, err, "Failed to link account")
		return
	}

	if err := h.Store.Upsert(ctx, user.ID, externalID, profile, cred); err != nil {
		h.Logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to save linked account")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link account", "details": err.Error()})
		return
	}

	h.Logger.Info().
		Str("user_id", user.ID.String()).
		Str("account_id", externalID).
		Msg("Linked account")
	c.Redirect(http.StatusFound, h.FrontendURL)
}

func (h *handler) listAccounts(c *gin.Context) {
	views, err := h.Store.List(c.Request.Context(), session.CurrentUser(c).ID)
	if err != nil {
		h.Logger.Error().Err(err).Msg("Failed to list accounts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *handler) removeAccount(c *gin.Context) {
	removed, err := h.Store.Remove(c.Request.Context(), session.CurrentUser(c).ID, c.Param("id"))
	if err != nil {
		h.Logger.Error().Err(err).Msg("Failed to remove account")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account", "details": err.Error()})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
