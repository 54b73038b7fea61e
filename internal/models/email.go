package models

// MessageSummary is the listing shape of a provider message. Date is the raw
// Date header value; it is not reparsed.
type MessageSummary struct {
	ID                  string `json:"id"`
	ThreadID            string `json:"threadId"`
	From                string `json:"from"`
	Subject             string `json:"subject"`
	Date                string `json:"date"`
	Snippet             string `json:"snippet"`
	IsRecruiter         bool   `json:"isRecruiter"`
	ReplyCountRecruiter *int   `json:"replyCountRecruiter,omitempty"`
}

// MessageDetail adds the decoded body (HTML, else plain text, else the snippet).
type MessageDetail struct {
	MessageSummary
	Body string `json:"body"`
}
