// Package mail delivers booking invites. A Transport either talks to an SMTP
// relay or writes each message into a local outbox directory; the
// Dispatcher composes the attendee and internal messages on top of it.
package mail

import (
	"context"

	"github.com/novendor/novendor-site/server/internal/model"
)

// Attachment is a named file carried by a Message.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Message is a single outbound email.
type Message struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Transport sends a message and reports how it left the process.
type Transport interface {
	Send(ctx context.Context, msg Message) (model.DeliveryMode, error)
}
