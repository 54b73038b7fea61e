package gmailmock

import (
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/api/gmail/v1"
)

// NewID returns a Gmail-style hex identifier.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// TextPart builds a leaf part whose body is URL-safe base64, as Gmail sends it.
func TextPart(mimeType, text string) *gmail.MessagePart {
	return &gmail.MessagePart{
		MimeType: mimeType,
		Body: &gmail.MessagePartBody{
			Data: base64.URLEncoding.EncodeToString([]byte(text)),
			Size: int64(len(text)),
		},
	}
}

// Multipart builds a container part.
func Multipart(mimeType string, parts ...*gmail.MessagePart) *gmail.MessagePart {
	return &gmail.MessagePart{
		MimeType: mimeType,
		Body:     &gmail.MessagePartBody{},
		Parts:    parts,
	}
}

// Envelope holds the headers a message is listed with.
type Envelope struct {
	From    string
	To      string
	Subject string
	Date    string
}

// NewMessage assembles a full-format message. A nil payload gets a
// text/plain body equal to the snippet.
func NewMessage(id, threadID string, env Envelope, snippet string, payload *gmail.MessagePart) *gmail.Message {
	if payload == nil {
		payload = TextPart("text/plain", snippet)
	}
	payload.Headers = append([]*gmail.MessagePartHeader{
		{Name: "From", Value: env.From},
		{Name: "To", Value: env.To},
		{Name: "Subject", Value: env.Subject},
		{Name: "Date", Value: env.Date},
	}, payload.Headers...)

	return &gmail.Message{
		Id:       id,
		ThreadId: threadID,
		Snippet:  snippet,
		LabelIds: []string{"INBOX"},
		Payload:  payload,
	}
}

// metadataView trims msg to what format=metadata returns.
func metadataView(msg *gmail.Message, names []string) *gmail.Message {
	out := *msg
	out.Payload = nil
	if msg.Payload == nil {
		return &out
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.ToLower(n)] = true
	}
	var headers []*gmail.MessagePartHeader
	for _, h := range msg.Payload.Headers {
		if len(wanted) == 0 || wanted[strings.ToLower(h.Name)] {
			headers = append(headers, h)
		}
	}
	out.Payload = &gmail.MessagePart{MimeType: msg.Payload.MimeType, Headers: headers}
	return &out
}
