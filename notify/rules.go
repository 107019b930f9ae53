// Package notify implements the session lifecycle notification engine: a
// daily batch over active sessions where each session is checked against a
// fixed, ordered list of time-windowed rules, every rule being made
// idempotent by an append-only notification log.
package notify

import (
	"fmt"
	"time"

	"trainflow/email"
	"trainflow/session"
)

// Rule type identifiers, recorded verbatim in the notification log.
const (
	TypeLogisticsReminder48H   = "LOGISTICS_REMINDER_48H"
	TypeParticipantsAlertJ15   = "PARTICIPANTS_ALERT_J15"
	TypeParticipantsCriticalJ9 = "PARTICIPANTS_CRITICAL_J9"
	TypeProgramSendJ30         = "PROGRAM_SEND_J30"
	TypeMissionReminderJ21     = "MISSION_REMINDER_J21"
	TypeDocPackJ7              = "DOC_PACK_J7"
	TypeProofReminderJ1        = "PROOF_REMINDER_J1"
)

// Message is a fully rendered notification ready for dispatch.
type Message struct {
	Recipient   string
	Subject     string
	HTML        string
	Attachments []email.Attachment
}

// Rule is one independent predicate/action pair. Guard checks data
// completeness, InWindow checks the time window, Compose renders the message
// (and may invoke the document renderer). Rules stay pure except for Compose,
// which may fail; the runner owns log checks and dispatch.
type Rule struct {
	Type     string
	Guard    func(session.Session) bool
	InWindow func(session.Session, time.Time) bool
	Compose  func(session.Session) (Message, error)
}

// DocumentRenderer produces the attendance sheet attached by the
// documentation pack rule.
type DocumentRenderer interface {
	Render(session.Session) ([]byte, error)
}

// LogisticsPredicate decides whether a session's logistics are strictly
// complete. The engine treats it as an opaque boolean input.
type LogisticsPredicate func(session.Session) bool

// DefaultRules returns the seven production rules in their fixed evaluation
// order. The order only matters for failure granularity: when a rule errors,
// the runner skips the remaining rules for that session. Adding a rule means
// appending here; the runner loop never changes.
func DefaultRules(docs DocumentRenderer, logisticsComplete LogisticsPredicate) []Rule {
	return []Rule{
		{
			// Logistics nags start from booking recency, not event
			// proximity: measured in absolute hours from CreatedAt while
			// every other window counts calendar days to the session date.
			Type:  TypeLogisticsReminder48H,
			Guard: func(s session.Session) bool { return !logisticsComplete(s) },
			InWindow: func(s session.Session, now time.Time) bool {
				return now.Sub(s.CreatedAt) >= 48*time.Hour
			},
			Compose: composeLogisticsReminder,
		},
		{
			Type:  TypeParticipantsAlertJ15,
			Guard: func(s session.Session) bool { return !s.HasParticipants() },
			InWindow: func(s session.Session, now time.Time) bool {
				d := daysUntil(s.Date, now)
				return d > 9 && d <= 15
			},
			Compose: composeParticipantsAlert,
		},
		{
			Type:  TypeParticipantsCriticalJ9,
			Guard: func(s session.Session) bool { return !s.HasParticipants() },
			InWindow: func(s session.Session, now time.Time) bool {
				return daysUntil(s.Date, now) <= 9
			},
			Compose: composeParticipantsCritical,
		},
		{
			Type: TypeProgramSendJ30,
			Guard: func(s session.Session) bool {
				return s.Formation.ProgramURL != nil && *s.Formation.ProgramURL != ""
			},
			InWindow: func(s session.Session, now time.Time) bool {
				return daysUntil(s.Date, now) <= 30
			},
			Compose: composeProgramSend,
		},
		{
			Type:  TypeMissionReminderJ21,
			Guard: session.Session.HasTrainer,
			InWindow: func(s session.Session, now time.Time) bool {
				return daysUntil(s.Date, now) <= 21
			},
			Compose: composeMissionReminder,
		},
		{
			Type:  TypeDocPackJ7,
			Guard: session.Session.HasTrainer,
			InWindow: func(s session.Session, now time.Time) bool {
				return daysUntil(s.Date, now) <= 7
			},
			Compose: composeDocPack(docs),
		},
		{
			Type:  TypeProofReminderJ1,
			Guard: func(s session.Session) bool { return !s.HasProof() },
			InWindow: func(s session.Session, now time.Time) bool {
				return isYesterday(s.Date, now)
			},
			Compose: composeProofReminder,
		},
	}
}

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// daysUntil counts the days from now to date as the ceiling of the
// millisecond difference over one day. A session 15.1 days out is 16 days
// away, exactly 15.0 days out is 15; past dates go negative. Ceiling
// division decides which side of every window boundary a session lands on,
// so it is used consistently everywhere.
func daysUntil(date, now time.Time) int {
	ms := date.Sub(now).Milliseconds()
	q := ms / dayMillis
	if ms%dayMillis > 0 {
		q++
	}
	return int(q)
}

// isYesterday compares calendar days, not elapsed hours: a session on the
// 2nd matches any "now" on the 3rd regardless of time of day.
func isYesterday(date, now time.Time) bool {
	y := now.AddDate(0, 0, -1)
	dy, dm, dd := date.Date()
	yy, ym, yd := y.Date()
	return dy == yy && dm == ym && dd == yd
}

// composeDocPack renders the attendance sheet and attaches it to the trainer
// documentation pack. A render failure surfaces like a send failure: the
// error propagates and no log entry is written, so the pack retries next
// cycle.
func composeDocPack(docs DocumentRenderer) func(session.Session) (Message, error) {
	return func(s session.Session) (Message, error) {
		sheet, err := docs.Render(s)
		if err != nil {
			return Message{}, fmt.Errorf("notify: render attendance sheet for session %s: %w", s.ID, err)
		}
		msg := docPackMessage(s)
		msg.Attachments = []email.Attachment{{
			Filename:    fmt.Sprintf("attendance-sheet-%s.pdf", s.Date.Format("2006-01-02")),
			ContentType: "application/pdf",
			Content:     sheet,
		}}
		return msg, nil
	}
}
