package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridSender delivers mail through the SendGrid v3 API. Unlike a typical
// fire-and-forget mailer it sends inline and returns the transport error, so
// dispatch code can decide whether the send actually happened.
type SendgridSender struct {
	key     string
	from    *sgmail.Email
	subjTag string
}

// NewSendgridSender builds a sender using the given API key and from address.
// subjTag, when non-empty, is prefixed to every subject as "[tag] ".
func NewSendgridSender(key, fromName, fromAddr, subjTag string) *SendgridSender {
	return &SendgridSender{
		key:     key,
		from:    sgmail.NewEmail(fromName, fromAddr),
		subjTag: subjTag,
	}
}

var _ Sender = (*SendgridSender)(nil)

func (s *SendgridSender) Send(ctx context.Context, to, subject, html string) error {
	return s.SendWithAttachments(ctx, to, subject, html, nil)
}

func (s *SendgridSender) SendWithAttachments(ctx context.Context, to, subject, html string, attachments []Attachment) error {
	if to == "" {
		return fmt.Errorf("email: recipient required")
	}

	m := s.prepare(to, subject, html, attachments)

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	// The SendGrid client carries no per-send deadline; a hung send blocks
	// the cycle until the transport gives up.
	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("email: sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("email: sendgrid status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (s *SendgridSender) prepare(to, subject, html string, attachments []Attachment) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	if s.subjTag != "" {
		p.Subject = "[" + s.subjTag + "] " + subject
	} else {
		p.Subject = subject
	}
	p.AddTos(sgmail.NewEmail("", to))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", html))

	for _, a := range attachments {
		m.AddAttachment(&sgmail.Attachment{
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			Type:        a.ContentType,
			Filename:    a.Filename,
			Disposition: "attachment",
		})
	}
	return m
}
