// Package gmailmock fakes the Google surfaces the mail service talks to:
// Gmail v1 messages and threads, OAuth2 userinfo, and the authorization
// code flow. It serves the mock-server binary and package tests.
package gmailmock

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"google.golang.org/api/gmail/v1"
)

// Account is one fake mailbox. Messages are kept newest first.
type Account struct {
	ID       string
	Email    string
	Name     string
	Picture  string
	Messages []*gmail.Message
}

// Server holds every fake mailbox and the tokens that open them.
type Server struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	order    []string
	tokens   map[string]string
	codes    map[string]string
	failing  map[string]bool
}

func New() *Server {
	return &Server{
		accounts: make(map[string]*Account),
		tokens:   make(map[string]string),
		codes:    make(map[string]string),
		failing:  make(map[string]bool),
	}
}

// AddAccount registers or replaces a mailbox.
func (s *Server) AddAccount(acc *Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[acc.ID]; !exists {
		s.order = append(s.order, acc.ID)
	}
	s.accounts[acc.ID] = acc
}

// AddMessage puts msg at the top of the mailbox.
func (s *Server) AddMessage(accountID string, msg *gmail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("unknown account %s", accountID)
	}
	acc.Messages = append([]*gmail.Message{msg}, acc.Messages...)
	return nil
}

// IssueToken mints a new access token for the account.
func (s *Server) IssueToken(accountID string) string {
	token := "mock-" + NewID()
	s.SetToken(token, accountID)
	return token
}

// SetToken binds a fixed access token to the account.
func (s *Server) SetToken(token, accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = accountID
}

// RevokeToken makes every later call with token answer 401.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// FailThread makes lookups of threadID answer 500.
func (s *Server) FailThread(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[threadID] = true
}

// Handler returns a standalone gin engine serving every route.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	s.Register(r)
	return r
}

// Register mounts the fake Google routes on r.
func (s *Server) Register(r gin.IRouter) {
	r.GET("/o/oauth2/auth", s.handleAuthorize)
	r.POST("/token", s.handleToken)

	api := r.Group("/", s.requireToken)
	{
		api.GET("/oauth2/v2/userinfo", s.handleUserinfo)
		api.GET("/gmail/v1/users/:userId/messages", s.handleListMessages)
		api.GET("/gmail/v1/users/:userId/messages/:id", s.handleGetMessage)
		api.GET("/gmail/v1/users/:userId/threads/:id", s.handleGetThread)
	}
}

func apiError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"errors":  []gin.H{{"message": message, "reason": http.StatusText(code)}},
		},
	})
}

func (s *Server) requireToken(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok {
		apiError(c, http.StatusUnauthorized, "Request is missing required authentication credential. Expected OAuth 2 access token.")
		return
	}

	s.mu.RLock()
	accountID, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		apiError(c, http.StatusUnauthorized, "Invalid Credentials")
		return
	}
	c.Set("accountID", accountID)
	c.Next()
}

func (s *Server) account(c *gin.Context) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[c.GetString("accountID")]
	if !ok {
		return Account{}, false
	}
	snapshot := *acc
	snapshot.Messages = append([]*gmail.Message(nil), acc.Messages...)
	return snapshot, true
}

func (s *Server) handleUserinfo(c *gin.Context) {
	acc, ok := s.account(c)
	if !ok {
		apiError(c, http.StatusUnauthorized, "Invalid Credentials")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":             acc.ID,
		"email":          acc.Email,
		"verified_email": true,
		"name":           acc.Name,
		"picture":        acc.Picture,
	})
}

func (s *Server) handleListMessages(c *gin.Context) {
	acc, ok := s.account(c)
	if !ok {
		apiError(c, http.StatusUnauthorized, "Invalid Credentials")
		return
	}

	limit := 100
	if v := c.Query("maxResults"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			apiError(c, http.StatusBadRequest, "Invalid value for maxResults")
			return
		}
		limit = n
	}

	refs := make([]gin.H, 0, limit)
	for _, msg := range acc.Messages {
		if len(refs) == limit {
			break
		}
		refs = append(refs, gin.H{"id": msg.Id, "threadId": msg.ThreadId})
	}
	c.JSON(http.StatusOK, gin.H{
		"messages":           refs,
		"resultSizeEstimate": len(acc.Messages),
	})
}

func (s *Server) handleGetMessage(c *gin.Context) {
	acc, ok := s.account(c)
	if !ok {
		apiError(c, http.StatusUnauthorized, "Invalid Credentials")
		return
	}

	id := c.Param("id")
	for _, msg := range acc.Messages {
		if msg.Id != id {
			continue
		}
		if c.Query("format") == "metadata" {
			msg = metadataView(msg, c.QueryArray("metadataHeaders"))
		}
		c.JSON(http.StatusOK, msg)
		return
	}
	apiError(c, http.StatusNotFound, "Requested entity was not found.")
}

func (s *Server) handleGetThread(c *gin.Context) {
	acc, ok := s.account(c)
	if !ok {
		apiError(c, http.StatusUnauthorized, "Invalid Credentials")
		return
	}

	id := c.Param("id")
	s.mu.RLock()
	failing := s.failing[id]
	s.mu.RUnlock()
	if failing {
		apiError(c, http.StatusInternalServerError, "Backend Error")
		return
	}

	headers := c.QueryArray("metadataHeaders")
	metadata := c.Query("format") == "metadata"

	// Threads list their messages oldest first.
	var messages []*gmail.Message
	for i := len(acc.Messages) - 1; i >= 0; i-- {
		msg := acc.Messages[i]
		if msg.ThreadId != id {
			continue
		}
		if metadata {
			msg = metadataView(msg, headers)
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		apiError(c, http.StatusNotFound, "Requested entity was not found.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "messages": messages})
}

// handleAuthorize skips the consent screen and redirects straight back with
// a code for the account named by login_hint, or the first account.
func (s *Server) handleAuthorize(c *gin.Context) {
	redirectURI, err := url.Parse(c.Query("redirect_uri"))
	if err != nil || redirectURI.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "redirect_uri is required"})
		return
	}

	s.mu.Lock()
	accountID := ""
	hint := strings.ToLower(c.Query("login_hint"))
	for _, id := range s.order {
		if hint == "" || strings.ToLower(s.accounts[id].Email) == hint {
			accountID = id
			break
		}
	}
	code := ""
	if accountID != "" {
		code = uuid.NewString()
		s.codes[code] = accountID
	}
	s.mu.Unlock()

	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "no matching account"})
		return
	}

	q := redirectURI.Query()
	q.Set("code", code)
	q.Set("state", c.Query("state"))
	redirectURI.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, redirectURI.String())
}

func (s *Server) handleToken(c *gin.Context) {
	if c.PostForm("grant_type") != "authorization_code" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type"})
		return
	}

	code := c.PostForm("code")
	s.mu.Lock()
	accountID, ok := s.codes[code]
	delete(s.codes, code)
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_grant", "error_description": "Bad Request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  s.IssueToken(accountID),
		"refresh_token": "refresh-" + NewID(),
		"token_type":    "Bearer",
		"expires_in":    3599,
		"scope":         "https://www.googleapis.com/auth/gmail.readonly https://www.googleapis.com/auth/userinfo.profile https://www.googleapis.com/auth/userinfo.email openid",
	})
}
