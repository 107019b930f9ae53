// Package email provides the outbound mail transport consumed by the
// notification engine. Implementations must be synchronous and surface
// transport failures to the caller: the engine relies on a failed send
// returning an error so that no idempotency record gets written for it.
package email

import "context"

// Attachment is a file attached to an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Sender sends a single HTML email to a single recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
	SendWithAttachments(ctx context.Context, to, subject, html string, attachments []Attachment) error
}
