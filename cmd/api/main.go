package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/floroz/hammer/internal/adapters/api"
	"github.com/floroz/hammer/internal/adapters/database"
	"github.com/floroz/hammer/internal/adapters/events"
	"github.com/floroz/hammer/internal/adapters/memory"
	redisadapter "github.com/floroz/hammer/internal/adapters/redis"
	"github.com/floroz/hammer/internal/config"
	"github.com/floroz/hammer/internal/domain/auctions"
	"github.com/floroz/hammer/internal/domain/bids"
	"github.com/floroz/hammer/internal/domain/notifications"
	"github.com/floroz/hammer/migrations"
	"github.com/floroz/hammer/pkg/auth"
	pkgdb "github.com/floroz/hammer/pkg/database"
	pkgevents "github.com/floroz/hammer/pkg/events"
)

// app is the wiring shared by both store modes
type app struct {
	coordinator    *bids.Coordinator
	auctionService *auctions.Service
	inbox          api.NotificationLister
	dispatcher     *notifications.Dispatcher
	background     []func(ctx context.Context) error
	health         func(ctx context.Context) error
	closers        []func()
}

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config.LoadDotEnv()
	cfg, err := config.Load("api", os.Args[1:])
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Require(config.KeyAuthPublicKey); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Token verification
	publicKey, err := cfg.ReadAuthPublicKey()
	if err != nil {
		logger.Error("Unable to load auth key", "error", err)
		os.Exit(1)
	}
	verifier, err := auth.NewVerifier(publicKey, cfg.AuthIssuer)
	if err != nil {
		logger.Error("Unable to create token verifier", "error", err)
		os.Exit(1)
	}

	// 2. Optional live fan-out
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

	// 3. Store, domain services and background loops
	var a *app
	switch cfg.Store {
	case config.StoreMemory:
		a = newMemoryApp(cfg, live, logger)
	default:
		a, err = newPostgresApp(ctx, cfg, live, logger)
		if err != nil {
			logger.Error("Unable to start", "error", err)
			os.Exit(1)
		}
	}
	defer func() {
		for i := len(a.closers) - 1; i >= 0; i-- {
			a.closers[i]()
		}
	}()

	// 4. API
	handler := api.NewBidServiceHandler(a.coordinator, a.auctionService, a.inbox, logger)
	path, h := api.NewHTTPHandler(handler, verifier)

	mux := http.NewServeMux()
	mux.Handle(path, h)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := a.health(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Use h2c for HTTP/2 without TLS (common for internal services / local dev)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// Notices are drained after the server stops accepting bids, so the
	// dispatcher is not bound to the signal context.
	g.Go(func() error {
		return a.dispatcher.Run(context.WithoutCancel(gctx))
	})
	for _, run := range a.background {
		run := run
		g.Go(func() error { return run(gctx) })
	}
	g.Go(func() error {
		logger.Info("Starting Bid Service API", "addr", cfg.HTTPAddr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		a.dispatcher.Close()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Stopped", "dropped_notices", a.dispatcher.Dropped())
}

func dispatcherConfig(cfg *config.Config) notifications.DispatcherConfig {
	return notifications.DispatcherConfig{
		Workers:   cfg.NotifyWorkers,
		QueueSize: cfg.NotifyQueueSize,
	}
}

// newMemoryApp keeps everything in process and seeds one open auction to bid on
func newMemoryApp(cfg *config.Config, live notifications.LivePublisher, logger *slog.Logger) *app {
	store := memory.NewStore(cfg.LockTimeout)
	auctionRepo := memory.NewAuctionRepository(store)
	inbox := memory.NewNotificationStore(live)
	dispatcher := notifications.NewDispatcher(inbox, dispatcherConfig(cfg), logger)

	demo := demoAuction(time.Now().UTC())
	store.PutAuction(demo)
	logger.Info("Seeded demo auction", "auction_id", demo.ID, "end_at", demo.EndAt)

	return &app{
		coordinator: bids.NewCoordinator(
			store,
			auctionRepo,
			memory.NewBidRepository(store),
			memory.NewOutboxRepository(store),
			dispatcher,
			bids.WithLogger(logger),
		),
		auctionService: auctions.NewService(auctionRepo),
		inbox:          inbox,
		dispatcher:     dispatcher,
		health:         func(context.Context) error { return nil },
	}
}

// demoAuction is a live auction with no bids yet, open for a day
func demoAuction(now time.Time) *auctions.Auction {
	return &auctions.Auction{
		ID:                uuid.New(),
		CreatorID:         uuid.New(),
		Title:             "Demo auction",
		Status:            auctions.StatusActive,
		StartAt:           now,
		EndAt:             now.Add(24 * time.Hour),
		CurrentHighestBid: decimal.Zero,
		BidIncrement:      decimal.NewFromInt(10),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// newPostgresApp wires the durable stack: the outbox relay runs in process when RabbitMQ is configured
func newPostgresApp(ctx context.Context, cfg *config.Config, live notifications.LivePublisher, logger *slog.Logger) (*app, error) {
	pool, err := pkgdb.Connect(ctx, cfg.DBURL)
	if err != nil {
		return nil, err
	}
	logger.Info("Postgres Connected")
	a := &app{closers: []func(){pool.Close}}

	if cfg.Migrate {
		if err := pkgdb.Migrate(pool, migrations.FS); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("Migrations applied")
	}

	txManager := pkgdb.NewPostgresTransactionManager(pool, cfg.LockTimeout)
	auctionRepo := database.NewPostgresAuctionRepository(pool)
	outboxRepo := database.NewPostgresOutboxRepository(pool)

	a.dispatcher = notifications.NewDispatcher(database.NewOutboxSink(pool), dispatcherConfig(cfg), logger)
	a.coordinator = bids.NewCoordinator(
		txManager,
		auctionRepo,
		database.NewPostgresBidRepository(pool),
		outboxRepo,
		a.dispatcher,
		bids.WithLogger(logger),
	)
	a.auctionService = auctions.NewService(auctionRepo)
	a.inbox = notifications.NewService(database.NewPostgresNotificationRepository(pool), txManager, live, logger)
	a.health = pool.Ping

	if err := startRelay(cfg, pool, a, logger); err != nil {
		for _, c := range a.closers {
			c()
		}
		return nil, err
	}
	return a, nil
}

func startRelay(cfg *config.Config, pool *pgxpool.Pool, a *app, logger *slog.Logger) error {
	if cfg.RabbitMQURL == "" {
		logger.Warn("RabbitMQ not configured, outbox events stay pending until a worker relays them")
		return nil
	}

	amqpConn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return err
	}
	logger.Info("RabbitMQ Connected")

	producer, err := events.NewBidEventsProducer(pool, amqpConn, pkgevents.RelayConfig{
		BatchSize: cfg.OutboxBatchSize,
		Interval:  cfg.OutboxInterval,
		Exchange:  cfg.Exchange,
	}, logger)
	if err != nil {
		_ = amqpConn.Close()
		return err
	}

	a.closers = append(a.closers, func() { _ = amqpConn.Close() }, func() { _ = producer.Close() })
	a.background = append(a.background, func(ctx context.Context) error {
		logger.Info("Starting Outbox Relay...")
		return producer.Run(ctx)
	})
	return nil
}
