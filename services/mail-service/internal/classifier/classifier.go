// Package classifier flags recruitment-related mail with a keyword and
// job-board domain heuristic. Same inputs always give the same answer.
package classifier

import (
	"strings"

	"github.com/stoik/mailhub/internal/models"
)

// DefaultKeywords are matched against sender, subject and snippet.
var DefaultKeywords = []string{
	"recruiter",
	"talent acquisition",
	"hiring",
	"opportunity",
	"opening",
	"job",
	"career",
	"interview",
}

// DefaultDomains are matched against the sender only.
var DefaultDomains = []string{
	"@indeed.com",
	"@linkedin.com",
	"@naukri.com",
	"@monster.com",
	"@glassdoor.com",
	"@ziprecruiter.com",
}

// Classifier is safe for concurrent use; it is never mutated after New.
type Classifier struct {
	keywords []string
	domains  []string
}

// New builds a classifier. Empty lists fall back to the defaults.
func New(keywords, domains []string) *Classifier {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	if len(domains) == 0 {
		domains = DefaultDomains
	}
	return &Classifier{
		keywords: lowerAll(keywords),
		domains:  lowerAll(domains),
	}
}

// Default returns a classifier using the built-in lists.
func Default() *Classifier {
	return New(nil, nil)
}

// IsRecruiterLike reports whether the message looks recruitment-related.
func (c *Classifier) IsRecruiterLike(from, subject, snippet string) bool {
	haystack := strings.ToLower(from + " " + subject + " " + snippet)
	for _, kw := range c.keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}

	sender := strings.ToLower(from)
	for _, d := range c.domains {
		if strings.Contains(sender, d) {
			return true
		}
	}
	return false
}

// Matches classifies a projected summary.
func (c *Classifier) Matches(m models.MessageSummary) bool {
	return c.IsRecruiterLike(m.From, m.Subject, m.Snippet)
}

// CountInThread returns how many messages of a thread classify as recruiter-like.
func (c *Classifier) CountInThread(thread []models.MessageSummary) int {
	n := 0
	for _, m := range thread {
		if c.Matches(m) {
			n++
		}
	}
	return n
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
