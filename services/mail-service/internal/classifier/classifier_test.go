package classifier

import (
	"testing"

	"github.com/stoik/mailhub/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestIsRecruiterLike(t *testing.T) {
	c := Default()

	tests := []struct {
		name                   string
		from, subject, snippet string
		want                   bool
	}{
		{"job board domain", "Jane Doe <jane@indeed.com>", "Quick chat?", "", true},
		{"family", "Mom <mom@gmail.com>", "Dinner?", "see you at 7", false},
		{"keyword in subject", "a@b.com", "Interview schedule", "", true},
		{"keyword in snippet", "a@b.com", "Hi", "we are HIRING engineers", true},
		{"multi word keyword", "a@b.com", "", "from talent acquisition", true},
		{"domain is case insensitive", "x@LinkedIn.com", "", "", true},
		{"domain needs at sign", "news@notlinkedin.company", "", "", false},
		{"empty", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsRecruiterLike(tt.from, tt.subject, tt.snippet))
		})
	}
}

func TestCustomLists(t *testing.T) {
	c := New([]string{" Sponsorship "}, []string{"@example.org"})

	assert.True(t, c.IsRecruiterLike("a@b.com", "visa sponsorship", ""))
	assert.True(t, c.IsRecruiterLike("hr@example.org", "hello", ""))
	assert.False(t, c.IsRecruiterLike("a@b.com", "job interview", ""))
}

func TestCountInThread(t *testing.T) {
	c := Default()
	thread := []models.MessageSummary{
		{From: "Recruiter <r@acme.com>", Subject: "Role at Acme"},
		{From: "me@gmail.com", Subject: "Re: Role at Acme", Snippet: "thanks, sounds good"},
		{From: "r@acme.com", Subject: "Re: Role at Acme", Snippet: "let's set up an interview"},
	}
	assert.Equal(t, 2, c.CountInThread(thread))
	assert.Equal(t, 0, c.CountInThread(nil))
}
