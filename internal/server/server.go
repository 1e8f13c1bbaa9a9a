// Package server defines the core Server struct that composes the app's main dependencies.
//
// It contains the initialization logic to spin up the HTTP server
// and handles graceful shutdowns
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - validator and metrics registry
//   - notification mailer
//   - optional redis client and background job worker server (asynq)
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gurri8686/zohoprospects/internal/config"
	"github.com/gurri8686/zohoprospects/internal/lib/email"
	"github.com/gurri8686/zohoprospects/internal/lib/job"
	"github.com/gurri8686/zohoprospects/internal/metrics"
	"github.com/gurri8686/zohoprospects/internal/validation"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/gurri8686/zohoprospects/internal/logger"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself.
type Server struct {
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	LoggerService *loggerPkg.LoggerService

	// Validator is shared by every handler; it is safe for concurrent use.
	Validator *validation.Validator

	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	// Mailer sends notifications inline. The job worker uses it too.
	Mailer *email.Client

	// Redis is nil unless redis.address is configured.
	Redis *redis.Client

	// Job is nil unless async notifications are enabled.
	Job *job.JobService

	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies.
//
// It does NOT start the HTTP server directly. That is done in SetupHTTPServer + Start.
//
// Notes:
//   - Redis connection failure does not block startup unless async
//     notifications depend on it.
//   - JobService Start failure DOES block startup (returns error).
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	v, err := validation.New(validation.Options{
		EnforceMobileFormat: cfg.Validation.EnforceMobileFormat,
		MobilePattern:       cfg.Validation.MobilePattern,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize validator: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mailer, err := email.NewClient(ctx, &cfg.Notification, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email client: %w", err)
	}

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Validator:     v,
		Metrics:       metrics.New(registry),
		Registry:      registry,
		Mailer:        mailer,
	}

	if cfg.Redis.Address != "" {
		server.Redis = newRedisClient(ctx, cfg, logger, loggerService)
	}

	if cfg.Notification.Async {
		jobService := job.NewJobService(logger, cfg)
		jobService.InitHandlers(mailer)

		// asynq.Server.Start is non-blocking; workers run in their own goroutines.
		if err := jobService.Start(); err != nil {
			return nil, fmt.Errorf("failed to start job service: %w", err)
		}
		server.Job = jobService
	}

	return server, nil
}

func newRedisClient(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) *redis.Client {
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	// Hooks instrument Redis commands so they show up in distributed traces.
	if loggerService.GetApplication() != nil {
		redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Error().Err(err).Msg("Failed to connect to Redis, continuing without a healthy Redis")
	}

	return redisClient
}

// SetupHTTPServer configures the internal net/http server.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: handler,

		// Config stores int values, interpreted here as seconds.
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. It blocks until the server stops.
//
// It requires SetupHTTPServer to be called first.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server and its dependencies:
// HTTP server (in-flight requests finish until ctx deadline), job service,
// Redis and finally New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}

	s.LoggerService.Shutdown()

	return errors.Join(errs...)
}
