package projector

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/gmail/v1"
)

func leaf(mimeType, text string) *gmail.MessagePart {
	return &gmail.MessagePart{
		MimeType: mimeType,
		Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte(text))},
	}
}

func multipart(mimeType string, parts ...*gmail.MessagePart) *gmail.MessagePart {
	return &gmail.MessagePart{MimeType: mimeType, Body: &gmail.MessagePartBody{}, Parts: parts}
}

func TestExtractBody(t *testing.T) {
	tests := []struct {
		name string
		part *gmail.MessagePart
		want string
	}{
		{
			name: "inline data",
			part: leaf("text/plain", "just text"),
			want: "just text",
		},
		{
			name: "plain only",
			part: multipart("multipart/mixed", leaf("text/plain", "plain body")),
			want: "plain body",
		},
		{
			name: "html preferred over plain",
			part: multipart("multipart/alternative",
				leaf("text/plain", "plain body"),
				leaf("text/html", "<p>html body</p>"),
			),
			want: "<p>html body</p>",
		},
		{
			name: "nested leaf",
			part: multipart("multipart/mixed",
				&gmail.MessagePart{MimeType: "application/pdf", Body: &gmail.MessagePartBody{AttachmentId: "att"}},
				multipart("multipart/alternative", leaf("text/plain", "nested plain")),
			),
			want: "nested plain",
		},
		{
			name: "first nested success wins",
			part: multipart("multipart/mixed",
				multipart("multipart/related", multipart("multipart/alternative")),
				multipart("multipart/alternative", leaf("text/html", "second")),
				multipart("multipart/alternative", leaf("text/html", "third")),
			),
			want: "second",
		},
		{
			name: "nothing",
			part: multipart("multipart/mixed", &gmail.MessagePart{MimeType: "image/png"}),
			want: "",
		},
		{
			name: "nil",
			part: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractBody(tt.part))
		})
	}
}

func TestDecodeBodyRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"hello, world",
		"Grüße aus Köln ✉️ ??>>",
		"ünïcødé\nwith\r\nnewlines and ~~~ tildes",
	}
	for _, in := range inputs {
		padded := base64.URLEncoding.EncodeToString([]byte(in))
		raw := base64.RawURLEncoding.EncodeToString([]byte(in))
		assert.Equal(t, in, decodeBody(padded))
		assert.Equal(t, in, decodeBody(raw))
	}
}

func TestDecodeBodyFallsBackToRaw(t *testing.T) {
	assert.Equal(t, "not*base64!", decodeBody("not*base64!"))
}

func TestSummary(t *testing.T) {
	msg := &gmail.Message{
		Id:       "m1",
		ThreadId: "t1",
		Snippet:  "see you",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "Jane <jane@example.com>"},
				{Name: "Subject", Value: "Hello"},
				{Name: "Subject", Value: "Ignored"},
				{Name: "date", Value: "lowercase name does not match"},
			},
		},
	}

	got := Summary(msg)
	assert.Equal(t, "m1", got.ID)
	assert.Equal(t, "t1", got.ThreadID)
	assert.Equal(t, "Jane <jane@example.com>", got.From)
	assert.Equal(t, "Hello", got.Subject)
	assert.Equal(t, "", got.Date)
	assert.Equal(t, "see you", got.Snippet)
	assert.False(t, got.IsRecruiter)
	assert.Nil(t, got.ReplyCountRecruiter)
}

func TestSummaryWithoutPayload(t *testing.T) {
	got := Summary(&gmail.Message{Id: "m1"})
	assert.Equal(t, "m1", got.ID)
	assert.Empty(t, got.From)

	assert.Equal(t, "", Summary(nil).ID)
}

func TestDetailFallsBackToSnippet(t *testing.T) {
	msg := &gmail.Message{
		Id:      "m1",
		Snippet: "preview only",
		Payload: multipart("multipart/mixed"),
	}
	assert.Equal(t, "preview only", Detail(msg).Body)

	msg.Payload = multipart("multipart/alternative", leaf("text/html", "<b>hi</b>"))
	assert.Equal(t, "<b>hi</b>", Detail(msg).Body)
}
