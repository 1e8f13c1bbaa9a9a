package email

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotificationFailed marks a prospect that was created upstream but whose
// notification email could not be delivered (or queued).
var ErrNotificationFailed = errors.New("prospect notification failed")

// ProspectCreated is the data of a "new prospect" notification.
type ProspectCreated struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Link  string `json:"link"`
}

// NotifyProspectCreated emails the configured mailbox about a new prospect.
func (c *Client) NotifyProspectCreated(ctx context.Context, p ProspectCreated) error {
	if err := c.SendEmail(ctx, c.to, c.subject, TemplateProspectCreated, p); err != nil {
		return fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}

	c.logger.Info().
		Str("prospect_id", p.ID).
		Str("to", c.to).
		Msg("prospect notification sent")

	return nil
}
