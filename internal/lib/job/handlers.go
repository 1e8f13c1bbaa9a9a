package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gurri8686/zohoprospects/internal/lib/email"
	"github.com/hibiken/asynq"
)

// handleProspectNotificationTask sends a queued notification.
//
// Returning an error makes Asynq schedule a retry; a payload that cannot be
// decoded is skipped since retrying it would never succeed.
func (j *JobService) handleProspectNotificationTask(ctx context.Context, t *asynq.Task) error {
	var p email.ProspectCreated
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal prospect notification payload: %v: %w", err, asynq.SkipRetry)
	}

	if j.mailer == nil {
		return fmt.Errorf("job handlers not initialized")
	}

	j.logger.Info().
		Str("type", TaskProspectNotification).
		Str("prospect_id", p.ID).
		Msg("Processing prospect notification task")

	if err := j.mailer.NotifyProspectCreated(ctx, p); err != nil {
		j.logger.Error().
			Str("type", TaskProspectNotification).
			Str("prospect_id", p.ID).
			Err(err).
			Msg("Failed to send prospect notification")
		return err
	}

	return nil
}
