package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floroz/hammer/pkg/database"
)

// OutboxStatus defines the status of an event in the outbox
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusPublished  OutboxStatus = "published"
	OutboxStatusFailed     OutboxStatus = "failed"
)

// OutboxEvent is a row of the outbox_events table.
// EventType doubles as the routing key on the exchange.
type OutboxEvent struct {
	ID          uuid.UUID    `db:"id"`
	EventType   string       `db:"event_type"`
	Payload     []byte       `db:"payload"`
	Status      OutboxStatus `db:"status"`
	CreatedAt   time.Time    `db:"created_at"`
	ProcessedAt *time.Time   `db:"processed_at"`
}

// NewOutboxEvent builds a pending event with a fresh id
func NewOutboxEvent(id uuid.UUID, eventType string, payload []byte, now time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:        id,
		EventType: eventType,
		Payload:   payload,
		Status:    OutboxStatusPending,
		CreatedAt: now,
	}
}

// OutboxRepository is the relay's view of the outbox table
type OutboxRepository interface {
	// GetPendingEvents must lock the returned rows (FOR UPDATE SKIP LOCKED)
	GetPendingEvents(ctx context.Context, tx pgx.Tx, limit int) ([]*OutboxEvent, error)
	UpdateEventStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status OutboxStatus) error
}

// EventPublisher defines the interface for publishing events to a broker
type EventPublisher interface {
	Publish(ctx context.Context, exchange string, event *OutboxEvent) error
}

// RelayConfig tunes the polling loop
type RelayConfig struct {
	BatchSize int
	Interval  time.Duration
	Exchange  string
}

// OutboxRelay polls the database for pending events and publishes them
type OutboxRelay struct {
	outboxRepo OutboxRepository
	publisher  EventPublisher
	txManager  database.TransactionManager
	cfg        RelayConfig
	logger     *slog.Logger
}

// NewOutboxRelay creates a new outbox relay
func NewOutboxRelay(
	outboxRepo OutboxRepository,
	publisher EventPublisher,
	txManager database.TransactionManager,
	cfg RelayConfig,
	logger *slog.Logger,
) *OutboxRelay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &OutboxRelay{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		txManager:  txManager,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run starts the polling loop. It returns nil once ctx is done.
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

// drain keeps relaying full batches so a backlog does not wait one tick per batch
func (r *OutboxRelay) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := r.ProcessBatch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				r.logger.Error("Error processing outbox batch", "error", err)
			}
			return
		}
		if n < r.cfg.BatchSize {
			return
		}
	}
}

// ProcessBatch publishes at most one batch of pending events and returns how many were published.
// A publish failure rolls back the whole batch; already-sent events are sent again on the next
// pass, so consumers must be idempotent.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	tx, err := r.txManager.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	events, err := r.outboxRepo.GetPendingEvents(ctx, tx, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pending events: %w", err)
	}

	if len(events) == 0 {
		return 0, nil
	}

	r.logger.Debug("Processing outbox events", "count", len(events))

	for _, event := range events {
		if err := r.publisher.Publish(ctx, r.cfg.Exchange, event); err != nil {
			return 0, fmt.Errorf("failed to publish event %s: %w", event.ID, err)
		}

		if err := r.outboxRepo.UpdateEventStatus(ctx, tx, event.ID, OutboxStatusPublished); err != nil {
			return 0, fmt.Errorf("failed to update event status %s: %w", event.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit outbox batch: %w", err)
	}
	return len(events), nil
}
