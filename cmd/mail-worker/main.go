package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"finboard/internal/config"
	"finboard/internal/database"
	"finboard/internal/logger"
	"finboard/internal/mail"
	"finboard/internal/queue"
	"finboard/internal/services"
	"finboard/internal/worker"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Named("mail-worker")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the mail worker")
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("closing database", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := queue.NewClient(ctx, cfg.AMQPURL, cfg.MailExchange, cfg.MailQueue)
	if err != nil {
		return fmt.Errorf("failed to connect to message broker: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warnw("closing broker connection", "error", err)
		}
	}()

	// The worker only sends; it never queues. Config and templates are edited
	// through the API process, so they are read fresh for every job.
	emailService, err := services.NewEmailService(
		dbManager.DB(),
		mail.NewBrevoClient(cfg.BrevoAPIURL, nil),
		nil,
		services.WithCacheTTL(0),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("Starting mail worker", "queue", cfg.MailQueue)
		err := client.ConsumeMail(gctx, worker.NewMailHandler(emailService))
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down mail worker...")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Mail worker stopped")
	return nil
}
