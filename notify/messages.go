package notify

import (
	"fmt"
	"html"

	"trainflow/session"
)

// Message rendering is deliberately plain: one subject, a short HTML body,
// values escaped. Branding and layout live with the email templates of the
// surrounding CRM, not here.

func composeLogisticsReminder(s session.Session) (Message, error) {
	return Message{
		Recipient: s.Client.Email,
		Subject:   fmt.Sprintf("Logistics information needed for your session on %s", s.Date.Format("2006-01-02")),
		HTML: fmt.Sprintf(
			"<p>Hello %s,</p><p>Your training session <strong>%s</strong> scheduled for %s is still missing on-site logistics details (wifi, room access, material). Please complete them so we can brief your trainer.</p>",
			html.EscapeString(s.Client.CompanyName),
			html.EscapeString(s.Formation.Title),
			s.Date.Format("2006-01-02"),
		),
	}, nil
}

func composeParticipantsAlert(s session.Session) (Message, error) {
	return Message{
		Recipient: s.Client.Email,
		Subject:   fmt.Sprintf("Participant list missing — session on %s", s.Date.Format("2006-01-02")),
		HTML: fmt.Sprintf(
			"<p>Hello %s,</p><p>Your session <strong>%s</strong> takes place on %s and we have not received the participant list yet. Please send it over in the next few days.</p>",
			html.EscapeString(s.Client.CompanyName),
			html.EscapeString(s.Formation.Title),
			s.Date.Format("2006-01-02"),
		),
	}, nil
}

func composeParticipantsCritical(s session.Session) (Message, error) {
	return Message{
		Recipient: s.Client.Email,
		Subject:   fmt.Sprintf("Urgent: participant list required — session on %s", s.Date.Format("2006-01-02")),
		HTML: fmt.Sprintf(
			"<p>Hello %s,</p><p>Your session <strong>%s</strong> on %s is imminent and we still have no participant list. Without it we cannot prepare attendance documents. Please reply as soon as possible.</p>",
			html.EscapeString(s.Client.CompanyName),
			html.EscapeString(s.Formation.Title),
			s.Date.Format("2006-01-02"),
		),
	}, nil
}

func composeProgramSend(s session.Session) (Message, error) {
	program := ""
	if s.Formation.ProgramURL != nil {
		program = *s.Formation.ProgramURL
	}
	return Message{
		Recipient: s.Client.Email,
		Subject:   fmt.Sprintf("Training program — %s", s.Formation.Title),
		HTML: fmt.Sprintf(
			"<p>Hello %s,</p><p>Ahead of your session on %s, here is the program for <strong>%s</strong>: <a href=%q>%s</a>. Feel free to share it with the participants.</p>",
			html.EscapeString(s.Client.CompanyName),
			s.Date.Format("2006-01-02"),
			html.EscapeString(s.Formation.Title),
			program,
			html.EscapeString(program),
		),
	}, nil
}

func composeMissionReminder(s session.Session) (Message, error) {
	location := "to be confirmed"
	if s.Location != nil && *s.Location != "" {
		location = *s.Location
	}
	return Message{
		Recipient: s.Trainer.Email,
		Subject:   fmt.Sprintf("Mission reminder — %s on %s", s.Formation.Title, s.Date.Format("2006-01-02")),
		HTML: fmt.Sprintf(
			"<p>Hello %s,</p><p>A reminder of your upcoming mission: <strong>%s</strong> for %s on %s, location: %s.</p>",
			html.EscapeString(s.Trainer.FullName),
			html.EscapeString(s.Formation.Title),
			html.EscapeString(s.Client.CompanyName),
			s.Date.Format("2006-01-02"),
			html.EscapeString(location),
		),
	}, nil
}

func docPackMessage(s session.Session) Message {
	return Message{
		Recipient: s.Trainer.Email,
		Subject:   fmt.Sprintf("Documentation pack — %s on %s", s.Formation.Title, s.Date.Format("2006-01-02")),
		HTML: fmt.Sprintf(
			"<p>Hello %s,</p><p>Your session <strong>%s</strong> for %s is one week away. The attendance sheet is attached; please print it and have every participant sign both half-days.</p>",
			html.EscapeString(s.Trainer.FullName),
			html.EscapeString(s.Formation.Title),
			html.EscapeString(s.Client.CompanyName),
		),
	}
}

func composeProofReminder(s session.Session) (Message, error) {
	// The proof rule guards on the missing proof, not on trainer presence.
	// A trainer-less session here is malformed data; the error aborts the
	// rest of this session's rules and the cycle moves on.
	if !s.HasTrainer() {
		return Message{}, fmt.Errorf("notify: session %s has no trainer to remind for proof", s.ID)
	}
	return Message{
		Recipient: s.Trainer.Email,
		Subject:   fmt.Sprintf("Attendance proof needed — session of %s", s.Date.Format("2006-01-02")),
		HTML: fmt.Sprintf(
			"<p>Hello %s,</p><p>Your session <strong>%s</strong> took place yesterday and we have not received the signed attendance sheet. Please upload it so the session can be invoiced.</p>",
			html.EscapeString(s.Trainer.FullName),
			html.EscapeString(s.Formation.Title),
		),
	}, nil
}
