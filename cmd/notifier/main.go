package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/floroz/hammer/internal/adapters/database"
	"github.com/floroz/hammer/internal/adapters/events"
	redisadapter "github.com/floroz/hammer/internal/adapters/redis"
	"github.com/floroz/hammer/internal/config"
	"github.com/floroz/hammer/internal/domain/notifications"
	pkgdb "github.com/floroz/hammer/pkg/database"
)

// notifier stores outbid notifications and pushes bid activity to Redis
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config.LoadDotEnv()
	cfg, err := config.Load("notifier", os.Args[1:])
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
		logger.Info("Shutting down notification consumer...")
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

	// 2. Redis (optional)
	var live notifications.LivePublisher
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis connection failed (live updates disabled)", "error", err)
		} else {
			logger.Info("Redis Connected")
			live = redisadapter.NewLiveFeed(rdb)
		}
	}

	// 3. Dependencies
	txManager := pkgdb.NewPostgresTransactionManager(pool, cfg.LockTimeout)
	service := notifications.NewService(database.NewPostgresNotificationRepository(pool), txManager, live, logger)

	// 4. RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	// 5. Consumer
	consumer := events.NewNotificationConsumer(amqpConn, service, cfg.Exchange, logger)
	logger.Info("Starting notification consumer...")
	if err := consumer.Run(ctx); err != nil {
		logger.Error("Consumer failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Notifier stopped")
}
