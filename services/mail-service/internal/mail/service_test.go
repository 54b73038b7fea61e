package mail

import (
	"context"
	"math/rand"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stoik/mailhub/internal/gmailmock"
	"github.com/stoik/mailhub/internal/models"
	"github.com/stoik/mailhub/services/mail-service/internal/classifier"
	"github.com/stoik/mailhub/services/mail-service/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cred = models.Credential{AccessToken: "tok", TokenType: "Bearer"}

func setup(t *testing.T) (*gmailmock.Server, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mock := gmailmock.New()
	mock.AddAccount(&gmailmock.Account{ID: "acc-1", Email: "me@example.com", Name: "Me"})
	mock.SetToken(cred.AccessToken, "acc-1")
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	p := provider.NewGoogleProvider(provider.NewClientFactory(provider.Options{
		Endpoint: srv.URL,
		Timeout:  5 * time.Second,
	}))
	return mock, NewService(p, classifier.Default(), zerolog.Nop())
}

func add(t *testing.T, mock *gmailmock.Server, id, threadID, from, subject, snippet string) {
	t.Helper()
	msg := gmailmock.NewMessage(id, threadID, gmailmock.Envelope{
		From:    from,
		Subject: subject,
		Date:    "Mon, 2 Jan 2006 15:04:05 -0700",
	}, snippet, nil)
	require.NoError(t, mock.AddMessage("acc-1", msg))
}

func TestListSummaries(t *testing.T) {
	mock, svc := setup(t)
	add(t, mock, "m1", "t1", "Jane <jane@indeed.com>", "Quick chat?", "")
	add(t, mock, "m2", "t2", "Mom <mom@gmail.com>", "Dinner?", "see you at 7")

	got, err := svc.ListSummaries(context.Background(), cred, ListOptions{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "m2", got[0].ID)
	assert.Equal(t, "Dinner?", got[0].Subject)
	assert.Equal(t, "Mon, 2 Jan 2006 15:04:05 -0700", got[0].Date)
	assert.False(t, got[0].IsRecruiter)
	assert.Nil(t, got[0].ReplyCountRecruiter)

	assert.Equal(t, "m1", got[1].ID)
	assert.True(t, got[1].IsRecruiter)
}

func TestListSummariesReplyCounts(t *testing.T) {
	mock, svc := setup(t)
	add(t, mock, "m1", "t1", "Recruiter <r@acme.com>", "Role at Acme", "")
	add(t, mock, "m2", "t1", "me@example.com", "Re: Role at Acme", "thanks")
	add(t, mock, "m3", "t1", "r@acme.com", "Re: Role at Acme", "when can you interview?")
	add(t, mock, "m4", "t2", "friend@example.com", "Lunch", "tomorrow?")

	got, err := svc.ListSummaries(context.Background(), cred, ListOptions{IncludeReplyCounts: true})
	require.NoError(t, err)
	require.Len(t, got, 4)

	counts := map[string]int{}
	for _, s := range got {
		require.NotNil(t, s.ReplyCountRecruiter, s.ID)
		counts[s.ID] = *s.ReplyCountRecruiter
	}
	assert.Equal(t, map[string]int{"m1": 2, "m2": 2, "m3": 2, "m4": 0}, counts)
}

func TestListSummariesThreadFailureDegrades(t *testing.T) {
	mock, svc := setup(t)
	add(t, mock, "m1", "t1", "Recruiter <r@acme.com>", "Role at Acme", "")
	add(t, mock, "m2", "t2", "r@acme.com", "Interview", "")
	mock.FailThread("t1")

	got, err := svc.ListSummaries(context.Background(), cred, ListOptions{IncludeReplyCounts: true})
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := map[string]models.MessageSummary{got[0].ID: got[0], got[1].ID: got[1]}
	require.NotNil(t, byID["m1"].ReplyCountRecruiter)
	assert.Equal(t, 0, *byID["m1"].ReplyCountRecruiter)
	assert.True(t, byID["m1"].IsRecruiter)
	require.NotNil(t, byID["m2"].ReplyCountRecruiter)
	assert.Equal(t, 1, *byID["m2"].ReplyCountRecruiter)
}

func TestListSummariesAuthExpired(t *testing.T) {
	mock, svc := setup(t)
	add(t, mock, "m1", "t1", "a@b.com", "x", "")
	mock.RevokeToken(cred.AccessToken)

	_, err := svc.ListSummaries(context.Background(), cred, ListOptions{})
	require.Error(t, err)
	assert.True(t, provider.IsAuthExpired(err))
}

func TestMessage(t *testing.T) {
	mock, svc := setup(t)
	msg := gmailmock.NewMessage("m1", "t1", gmailmock.Envelope{From: "hr@linkedin.com", Subject: "Hello"}, "snip",
		gmailmock.Multipart("multipart/mixed",
			gmailmock.Multipart("multipart/alternative",
				gmailmock.TextPart("text/plain", "plain text"),
				gmailmock.TextPart("text/html", "<p>rich</p>"),
			),
		))
	require.NoError(t, mock.AddMessage("acc-1", msg))

	detail, err := svc.Message(context.Background(), cred, "m1")
	require.NoError(t, err)
	assert.Equal(t, "<p>rich</p>", detail.Body)
	assert.Equal(t, "Hello", detail.Subject)
	assert.True(t, detail.IsRecruiter)

	_, err = svc.Message(context.Background(), cred, "nope")
	require.Error(t, err)
	assert.True(t, provider.IsNotFound(err))
}

func TestListSummariesSeededMailbox(t *testing.T) {
	mock, svc := setup(t)
	gmailmock.Seed(mock, 10, rand.New(rand.NewSource(7)))

	seeded := models.Credential{AccessToken: gmailmock.DemoToken}
	got, err := svc.ListSummaries(context.Background(), seeded, ListOptions{IncludeReplyCounts: true, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, got, 5)
	for _, s := range got {
		assert.NotEmpty(t, s.From)
		assert.NotNil(t, s.ReplyCountRecruiter)
	}
}
