package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gurri8686/zohoprospects/internal/config"
	"github.com/gurri8686/zohoprospects/internal/handler"
	"github.com/gurri8686/zohoprospects/internal/lib/email"
	"github.com/gurri8686/zohoprospects/internal/lib/utils"
	"github.com/gurri8686/zohoprospects/internal/logger"
	"github.com/gurri8686/zohoprospects/internal/router"
	"github.com/gurri8686/zohoprospects/internal/server"
	"github.com/gurri8686/zohoprospects/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	printConfig := flag.Bool("print-config", false, "print the loaded configuration with secrets masked and exit")
	previewEmail := flag.Bool("preview-email", false, "render the new prospect email with sample data and exit")
	flag.Parse()

	if *previewEmail {
		body, err := email.Preview(email.TemplateProspectCreated)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Print(body)
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *printConfig {
		if err := utils.PrintJSON(os.Stdout, cfg.Redacted()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		return fmt.Errorf("failed to initialize New Relic: %w", err)
	}

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	services, err := service.NewServices(srv)
	if err != nil {
		_ = srv.Shutdown(context.Background())
		return fmt.Errorf("could not create services: %w", err)
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers, services)
	srv.SetupHTTPServer(r)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	var startErr error
	select {
	case startErr = <-serverErr:
		if startErr != nil {
			log.Error().Err(startErr).Msg("server stopped unexpectedly")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server exited properly")
	return startErr
}
