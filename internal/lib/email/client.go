// Package email provides the notification email client.
//
// Bodies are plain text rendered from embedded templates; delivery goes
// through a pluggable Sender (Resend, SendGrid, AWS SES, or a log-only sender).
package email

import (
	"context"
	"fmt"

	"github.com/gurri8686/zohoprospects/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Client renders templates and hands the result to a Sender.
type Client struct {
	sender  Sender
	to      string
	subject string
	logger  *zerolog.Logger
}

// NewClient creates an email Client using the provider named in cfg.
func NewClient(ctx context.Context, cfg *config.NotificationConfig, logger *zerolog.Logger) (*Client, error) {
	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}

	var sender Sender
	switch cfg.Provider {
	case "resend":
		sender = NewResendSender(cfg.Resend.APIKey, from, logger)
	case "sendgrid":
		sender = NewSendGridSender(cfg.SendGrid.APIKey, cfg.FromEmail, cfg.FromName, logger)
	case "ses":
		ses, err := NewSESSender(ctx, cfg.SES, from, logger)
		if err != nil {
			return nil, err
		}
		sender = ses
	case "log", "":
		sender = NewLogSender(logger)
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}

	return NewClientWithSender(sender, cfg, logger), nil
}

// NewClientWithSender creates a Client around an existing Sender.
func NewClientWithSender(sender Sender, cfg *config.NotificationConfig, logger *zerolog.Logger) *Client {
	return &Client{
		sender:  sender,
		to:      cfg.To,
		subject: cfg.Subject,
		logger:  logger,
	}
}

// SendEmail renders templateName with data and sends it to `to`.
func (c *Client) SendEmail(ctx context.Context, to, subject string, templateName Template, data any) error {
	body, err := Render(templateName, data)
	if err != nil {
		return err
	}

	if err := c.sender.Send(ctx, Message{To: to, Subject: subject, Text: body}); err != nil {
		return errors.Wrapf(err, "failed to send %s email", templateName)
	}

	return nil
}
