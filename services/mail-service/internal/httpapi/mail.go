package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stoik/mailhub/internal/models"
	"github.com/stoik/mailhub/services/mail-service/internal/accounts"
	"github.com/stoik/mailhub/services/mail-service/internal/mail"
	"github.com/stoik/mailhub/services/mail-service/internal/provider"
	"github.com/stoik/mailhub/services/mail-service/internal/session"
)

// credential resolves the userId query parameter to a stored credential.
// It writes the 400 response itself when none is found.
func (h *handler) credential(c *gin.Context) (*models.Credential, bool) {
	cred, err := accounts.GetCredential(c.Request.Context(), h.Store, session.CurrentUser(c).ID, c.Query("userId"))
	if err != nil {
		h.Logger.Error().Err(err).Msg("Failed to resolve credential")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve account", "details": err.Error()})
		return nil, false
	}
	if cred == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No account token found for this user"})
		return nil, false
	}
	return cred, true
}

func (h *handler) listEmails(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}

	summaries, err := h.Mail.ListSummaries(c.Request.Context(), *cred, mail.ListOptions{
		IncludeReplyCounts: strings.EqualFold(c.Query("includeReplyCounts"), "true"),
	})
	if err != nil {
		h.respondProviderError(c, err, "Failed to fetch emails")
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *handler) getMessage(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message id required"})
		return
	}
	cred, ok := h.credential(c)
	if !ok {
		return
	}

	detail, err := h.Mail.Message(c.Request.Context(), *cred, id)
	if err != nil {
		h.respondProviderError(c, err, "Failed to fetch message")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// respondProviderError maps a classified provider error to its status code.
func (h *handler) respondProviderError(c *gin.Context, err error, fallback string) {
	switch provider.KindOf(err) {
	case provider.AuthExpired:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication error", "details": err.Error()})
	case provider.NotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found", "details": err.Error()})
	default:
		h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("Upstream provider failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback, "details": err.Error()})
	}
}
