package email

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleSender logs messages instead of delivering them. It is the default
// transport when no SendGrid key is configured, which keeps local runs from
// emailing real clients.
type ConsoleSender struct {
	logger *zap.Logger
}

func NewConsoleSender(logger *zap.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

var _ Sender = (*ConsoleSender)(nil)

func (s *ConsoleSender) Send(ctx context.Context, to, subject, html string) error {
	return s.SendWithAttachments(ctx, to, subject, html, nil)
}

func (s *ConsoleSender) SendWithAttachments(_ context.Context, to, subject, html string, attachments []Attachment) error {
	names := make([]string, 0, len(attachments))
	for _, a := range attachments {
		names = append(names, a.Filename)
	}
	s.logger.Info("email (console transport)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(html)),
		zap.Strings("attachments", names),
	)
	return nil
}
