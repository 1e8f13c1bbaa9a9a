// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - You enqueue tasks (producer) using asynq.Client.
//   - A server runs workers that process those tasks (consumer) using asynq.Server.
//
// Here it carries "new prospect" notifications when async delivery is on.
package job

import (
	"context"

	"github.com/gurri8686/zohoprospects/internal/config"
	"github.com/gurri8686/zohoprospects/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Mailer delivers a notification synchronously. *email.Client satisfies it.
type Mailer interface {
	NotifyProspectCreated(ctx context.Context, p email.ProspectCreated) error
}

// enqueuer is the producer side of asynq.Client.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	client enqueuer
	server *asynq.Server
	mailer Mailer
	logger *zerolog.Logger
}

// NewJobService creates a JobService configured to use Redis from cfg.
//
// Queue weights give "critical" (notifications) the larger worker share.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	return &JobService{
		client: asynq.NewClient(redisOpt),
		server: server,
		logger: logger,
	}
}

// InitHandlers sets the mailer used by the notification worker.
func (j *JobService) InitHandlers(mailer Mailer) {
	j.mailer = mailer
}

// Start registers task handlers and starts the worker server in the background.
func (j *JobService) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskProspectNotification, j.handleProspectNotificationTask)

	j.logger.Info().Msg("Starting background job server")

	return j.server.Start(mux)
}

// Stop gracefully stops the job server and closes client resources.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	if j.server != nil {
		j.server.Shutdown()
	}
	if err := j.client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
