package session

import (
	"encoding/json"
	"strings"
	"time"
)

type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusOfferSent       Status = "OFFER_SENT"
	StatusConfirmed       Status = "CONFIRMED"
	StatusProofReceived   Status = "PROOF_RECEIVED"
	StatusInvoiced        Status = "INVOICED"
	StatusCancelled       Status = "CANCELLED"
	StatusArchived        Status = "ARCHIVED"
)

// Client is the company that booked the session.
type Client struct {
	ID          string
	CompanyName string
	Email       string
}

// Trainer is the dispatched instructor. A session may not have one assigned yet.
type Trainer struct {
	ID       string
	FullName string
	Email    string
}

// Formation is the training program a session delivers.
type Formation struct {
	ID         string
	Title      string
	ProgramURL *string
}

// Logistics describes the on-site setup supplied by the client. It is parsed
// at the repository boundary; unparsable or missing payloads yield the zero
// value, which is never strictly complete.
type Logistics struct {
	Wifi        *bool   `json:"wifi"`
	Subsidized  *bool   `json:"subsidized"`
	Material    *string `json:"material"`
	AccessNotes *string `json:"access_notes"`
}

// Participant is one attendee on the participant list.
type Participant struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the aggregate handed to the notification engine. It is read-only
// here; the surrounding CRM owns its lifecycle.
type Session struct {
	ID        string
	Date      time.Time
	CreatedAt time.Time
	Status    Status

	// RawParticipants carries the participant list exactly as stored.
	// The CRM writes it as serialized JSON text and tolerates junk, so the
	// empty/non-empty decision has to work on the raw form. See HasParticipants.
	RawParticipants *string

	Logistics Logistics
	ProofURL  *string
	Location  *string

	Client    Client
	Trainer   *Trainer
	Formation Formation
}

// HasParticipants reports whether the participant list holds anyone.
//
// The stored form is messy: nil, a blank string, "[]", "{}" and literal
// "null" all mean nobody registered. A non-blank string that is not valid
// JSON counts as a non-empty list — the CRM lets clients paste free text
// there and the reminder rules must not nag them for it.
func (s Session) HasParticipants() bool {
	if s.RawParticipants == nil {
		return false
	}
	trimmed := strings.TrimSpace(*s.RawParticipants)
	if trimmed == "" {
		return false
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return true
	}
	switch t := v.(type) {
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case nil:
		return false
	default:
		return true
	}
}

// Participants returns the typed participant list on a best-effort basis.
// Anything that does not parse as a JSON array yields an empty slice; this is
// only used for rendering, never for rule evaluation.
func (s Session) Participants() []Participant {
	if s.RawParticipants == nil {
		return nil
	}
	var list []Participant
	if err := json.Unmarshal([]byte(strings.TrimSpace(*s.RawParticipants)), &list); err != nil {
		return nil
	}
	return list
}

// HasTrainer reports whether a trainer with a reachable email is assigned.
func (s Session) HasTrainer() bool {
	return s.Trainer != nil && s.Trainer.Email != ""
}

// HasProof reports whether an attendance proof has been uploaded.
func (s Session) HasProof() bool {
	return s.ProofURL != nil && strings.TrimSpace(*s.ProofURL) != ""
}

// IsLogisticsStrictlyComplete reports whether every logistics field has been
// filled in. The notification engine consumes this as an opaque boolean; the
// strictness rules belong to the logistics workflow, not to the engine.
func IsLogisticsStrictlyComplete(s Session) bool {
	l := s.Logistics
	if l.Wifi == nil || l.Subsidized == nil {
		return false
	}
	if l.Material == nil || strings.TrimSpace(*l.Material) == "" {
		return false
	}
	if l.AccessNotes == nil || strings.TrimSpace(*l.AccessNotes) == "" {
		return false
	}
	return true
}
