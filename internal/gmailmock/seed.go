package gmailmock

import (
	"fmt"
	"math/rand"
	"time"

	"google.golang.org/api/gmail/v1"
)

var (
	firstNames = []string{"John", "Jane", "Bob", "Alice", "Charlie", "Diana", "Eve", "Frank"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis"}
	domains    = []string{"example.com", "company.com", "business.org", "enterprise.net", "linkedin.com", "indeed.com"}
	subjects   = []string{
		"Meeting tomorrow",
		"Project update",
		"Budget review",
		"Team lunch",
		"Quarterly report",
		"Exciting opportunity at Acme",
		"Interview availability",
		"Follow up",
	}
)

// DemoAccountID and DemoToken open the seeded demo mailbox.
const (
	DemoAccountID = "100000000000000000001"
	DemoEmail     = "demo.user@example.com"
	DemoToken     = "demo-access-token"
)

// Seed adds the demo account with n generated messages, grouped two per
// thread, and binds DemoToken to it.
func Seed(s *Server, n int, rng *rand.Rand) {
	acc := &Account{
		ID:      DemoAccountID,
		Email:   DemoEmail,
		Name:    "Demo User",
		Picture: "https://example.com/avatar/demo.png",
	}

	now := time.Now()
	threadID := ""
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			threadID = NewID()
		}
		acc.Messages = append(acc.Messages, GenerateMessage(rng, acc.Email, threadID, now.Add(-time.Duration(i)*time.Hour)))
	}

	s.AddAccount(acc)
	s.SetToken(DemoToken, acc.ID)
}

// GenerateMessage builds a random message to recipient in threadID.
func GenerateMessage(rng *rand.Rand, recipient, threadID string, receivedAt time.Time) *gmail.Message {
	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]
	domain := domains[rng.Intn(len(domains))]
	subject := subjects[rng.Intn(len(subjects))]

	from := fmt.Sprintf("%s %s <%s.%s@%s>", first, last, first, last, domain)
	snippet := fmt.Sprintf("This is a snippet for: %s", subject)
	plain := fmt.Sprintf("Hi,\n\n%s\n\nBest regards,\n%s", subject, first)
	html := fmt.Sprintf("<p>Hi,</p><p>%s</p><p>Best regards,<br>%s</p>", subject, first)

	return NewMessage(NewID(), threadID, Envelope{
		From:    from,
		To:      recipient,
		Subject: subject,
		Date:    receivedAt.Format(time.RFC1123Z),
	}, snippet, Multipart("multipart/alternative",
		TextPart("text/plain", plain),
		TextPart("text/html", html),
	))
}
