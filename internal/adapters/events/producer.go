package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/floroz/hammer/internal/adapters/database"
	pkgdb "github.com/floroz/hammer/pkg/database"
	pkgevents "github.com/floroz/hammer/pkg/events"
)

// BidEventsProducer relays bid.placed and bid.outbid rows from the outbox to RabbitMQ
type BidEventsProducer struct {
	relay     *pkgevents.OutboxRelay
	publisher *pkgevents.RabbitMQPublisher
}

// NewBidEventsProducer creates a new producer
func NewBidEventsProducer(pool *pgxpool.Pool, conn *amqp.Connection, cfg pkgevents.RelayConfig, logger *slog.Logger) (*BidEventsProducer, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}

	publisher, err := pkgevents.NewRabbitMQPublisher(conn, cfg.Exchange)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}

	txManager := pkgdb.NewPostgresTransactionManager(pool, 3*time.Second)
	outboxRepo := database.NewPostgresOutboxRepository(pool)

	relay := pkgevents.NewOutboxRelay(outboxRepo, publisher, txManager, cfg, logger)

	return &BidEventsProducer{
		relay:     relay,
		publisher: publisher,
	}, nil
}

// Run starts the relay loop
func (p *BidEventsProducer) Run(ctx context.Context) error {
	return p.relay.Run(ctx)
}

// Close closes the publisher channel
func (p *BidEventsProducer) Close() error {
	return p.publisher.Close()
}
