package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trainflow/email"
	"trainflow/notifylog"
)

// Log is the append-only idempotency store the engine checks and writes.
type Log interface {
	HasLog(ctx context.Context, ruleType, sessionID string) (bool, error)
	Create(ctx context.Context, entry notifylog.Entry) error
}

// Dispatcher performs the send-then-log step for a matched rule.
//
// Ordering is the whole point: the log entry is written only after the
// transport accepted the message. A send failure propagates with no entry
// written, so the rule fires again next cycle instead of being falsely
// marked sent.
type Dispatcher struct {
	sender email.Sender
	log    Log
	now    func() time.Time
	idGen  func() string
}

func NewDispatcher(sender email.Sender, log Log) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		log:    log,
		now:    time.Now,
		idGen:  func() string { return uuid.NewString() },
	}
}

// Dispatch sends the rendered message and records the send.
func (d *Dispatcher) Dispatch(ctx context.Context, ruleType, sessionID string, msg Message) error {
	var err error
	if len(msg.Attachments) > 0 {
		err = d.sender.SendWithAttachments(ctx, msg.Recipient, msg.Subject, msg.HTML, msg.Attachments)
	} else {
		err = d.sender.Send(ctx, msg.Recipient, msg.Subject, msg.HTML)
	}
	if err != nil {
		return fmt.Errorf("notify: send %s for session %s: %w", ruleType, sessionID, err)
	}

	entry := notifylog.Entry{
		ID:        d.idGen(),
		Type:      ruleType,
		SessionID: sessionID,
		Recipient: msg.Recipient,
		Status:    notifylog.StatusSent,
		CreatedAt: d.now(),
	}
	// A log write failure after a successful send means the next cycle may
	// resend. Duplicating a reminder beats silently never retrying one.
	if err := d.log.Create(ctx, entry); err != nil {
		return fmt.Errorf("notify: record %s for session %s: %w", ruleType, sessionID, err)
	}
	return nil
}
