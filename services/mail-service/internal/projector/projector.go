// Package projector turns raw Gmail messages into display summaries and
// decoded bodies. It never fails: missing fields become empty strings.
package projector

import (
	"github.com/stoik/mailhub/internal/models"
	"google.golang.org/api/gmail/v1"
)

// Summary extracts the display fields of msg.
func Summary(msg *gmail.Message) models.MessageSummary {
	if msg == nil {
		return models.MessageSummary{}
	}
	var headers []*gmail.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}
	return models.MessageSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		From:     Header(headers, "From"),
		Subject:  Header(headers, "Subject"),
		Date:     Header(headers, "Date"),
		Snippet:  msg.Snippet,
	}
}

// Detail extracts the summary plus a renderable body. The body is HTML when
// available, else plain text, else the snippet.
func Detail(msg *gmail.Message) models.MessageDetail {
	detail := models.MessageDetail{MessageSummary: Summary(msg)}
	if msg != nil {
		detail.Body = ExtractBody(msg.Payload)
	}
	if detail.Body == "" {
		detail.Body = detail.Snippet
	}
	return detail
}

// Header returns the first header value whose name matches exactly.
func Header(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && h.Name == name {
			return h.Value
		}
	}
	return ""
}
