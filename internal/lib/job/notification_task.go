package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gurri8686/zohoprospects/internal/lib/email"
	"github.com/hibiken/asynq"
)

const (
	// TaskProspectNotification is the job type name stored in Redis.
	TaskProspectNotification = "notify:prospect_created"

	notificationMaxRetry = 3
	notificationTimeout  = 30 * time.Second
)

// NewProspectNotificationTask serializes p into an Asynq task:
//   - MaxRetry(3): retry up to 3 times on failure
//   - Queue("critical"): notifications jump ahead of other work
//   - Timeout(30s): kill the task if the mail provider hangs
func NewProspectNotificationTask(p email.ProspectCreated) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskProspectNotification,
		payload,
		asynq.MaxRetry(notificationMaxRetry),
		asynq.Queue("critical"),
		asynq.Timeout(notificationTimeout),
	), nil
}

// NotifyProspectCreated queues the notification. Only a failure to enqueue is
// reported; delivery failures are retried by the worker.
func (j *JobService) NotifyProspectCreated(ctx context.Context, p email.ProspectCreated) error {
	task, err := NewProspectNotificationTask(p)
	if err != nil {
		return fmt.Errorf("%w: %w", email.ErrNotificationFailed, err)
	}

	info, err := j.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("%w: failed to enqueue: %w", email.ErrNotificationFailed, err)
	}

	j.logger.Info().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("prospect_id", p.ID).
		Msg("prospect notification queued")

	return nil
}
