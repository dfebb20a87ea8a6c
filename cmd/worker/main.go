package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/floroz/hammer/internal/adapters/events"
	"github.com/floroz/hammer/internal/config"
	"github.com/floroz/hammer/migrations"
	pkgdb "github.com/floroz/hammer/pkg/database"
	pkgevents "github.com/floroz/hammer/pkg/events"
)

// worker relays the outbox to RabbitMQ outside the API process
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config.LoadDotEnv()
	cfg, err := config.Load("worker", os.Args[1:])
	if err == nil {
		err = cfg.Require(config.KeyDBURL, config.KeyRabbitMQURL)
	}
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutting down worker...")
		cancel()
	}()

	// 1. Postgres
	pool, err := pkgdb.Connect(ctx, cfg.DBURL)
	if err != nil {
		logger.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Postgres Connected")

	if cfg.Migrate {
		if err := pkgdb.Migrate(pool, migrations.FS); err != nil {
			logger.Error("Failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	// 2. RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()
	logger.Info("RabbitMQ Connected")

	// 3. Relay
	producer, err := events.NewBidEventsProducer(pool, amqpConn, pkgevents.RelayConfig{
		BatchSize: cfg.OutboxBatchSize,
		Interval:  cfg.OutboxInterval,
		Exchange:  cfg.Exchange,
	}, logger)
	if err != nil {
		logger.Error("Failed to create producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	logger.Info("Starting Outbox Relay...")
	if err := producer.Run(ctx); err != nil {
		logger.Error("Outbox Relay stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped")
}
