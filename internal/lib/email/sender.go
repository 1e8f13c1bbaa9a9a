package email

import (
	"context"

	"github.com/rs/zerolog"
)

// Sender delivers a rendered message. Implementations can be swapped
// (Resend, SendGrid, SES, log) without changing callers.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// LogSender logs messages instead of sending them.
type LogSender struct {
	logger *zerolog.Logger
}

func NewLogSender(logger *zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info().
		Str("provider", "log").
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Text).
		Msg("email not sent, log provider in use")
	return nil
}

var _ Sender = (*LogSender)(nil)
