package notifylog

import "time"

type Status string

const (
	// StatusSent marks an entry written after the send was handed to the
	// email transport. There is deliberately no pending or failed status:
	// a failed send leaves no entry so the rule retries next cycle.
	StatusSent Status = "SENT"
)

// Entry is one append-only record of a notification that went out.
// Entries are written exactly once, never mutated, and only ever read back
// through the HasLog existence check.
type Entry struct {
	ID        string
	Type      string
	SessionID string
	Recipient string
	Status    Status
	CreatedAt time.Time
}
