package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stoik/mailhub/internal/gmailmock"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	mock := gmailmock.New()
	gmailmock.Seed(mock, 40, rng)

	r := gin.Default()

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Google endpoints: /gmail/v1, /oauth2/v2/userinfo, /o/oauth2/auth, /token
	mock.Register(r)

	// Admin endpoints for testing
	admin := r.Group("/admin")
	{
		admin.POST("/messages/add", handleAddMessages(mock, rng))
		admin.POST("/tokens/revoke", handleRevokeToken(mock))
		admin.POST("/threads/:id/fail", handleFailThread(mock))
	}

	addr := fmt.Sprintf(":%s", port)
	log.Info().
		Str("addr", addr).
		Str("account", gmailmock.DemoEmail).
		Str("token", gmailmock.DemoToken).
		Msg("Starting mock Google API server")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func handleAddMessages(mock *gmailmock.Server, rng *rand.Rand) gin.HandlerFunc {
	// rand.Rand is not safe for concurrent use.
	var mu sync.Mutex

	return func(c *gin.Context) {
		var req struct {
			Count    int    `json:"count"`
			ThreadID string `json:"threadId"`
		}

		// Try JSON body first
		if err := c.ShouldBindJSON(&req); err != nil {
			// Fall back to query parameter
			if n, err := strconv.Atoi(c.DefaultQuery("count", "1")); err == nil {
				req.Count = n
			}
			req.ThreadID = c.Query("threadId")
		}
		if req.Count < 1 {
			req.Count = 1
		}

		mu.Lock()
		defer mu.Unlock()

		ids := make([]string, 0, req.Count)
		for i := 0; i < req.Count; i++ {
			threadID := req.ThreadID
			if threadID == "" {
				threadID = gmailmock.NewID()
			}
			msg := gmailmock.GenerateMessage(rng, gmailmock.DemoEmail, threadID, time.Now())
			if err := mock.AddMessage(gmailmock.DemoAccountID, msg); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ids = append(ids, msg.Id)
		}

		c.JSON(http.StatusOK, gin.H{
			"added":   len(ids),
			"ids":     ids,
			"message": fmt.Sprintf("Added %d message(s) to %s", len(ids), gmailmock.DemoEmail),
		})
	}
}

func handleRevokeToken(mock *gmailmock.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
			return
		}
		mock.RevokeToken(token)
		c.JSON(http.StatusOK, gin.H{"revoked": true})
	}
}

func handleFailThread(mock *gmailmock.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		mock.FailThread(c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"failing": c.Param("id")})
	}
}
