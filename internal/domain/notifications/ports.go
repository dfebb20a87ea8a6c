package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floroz/hammer/internal/domain/bids"
)

// Sink accepts notices for delivery. It is called outside any bid transaction.
type Sink interface {
	Enqueue(ctx context.Context, notice Notice) error
}

// Repository stores delivered notifications and the ids of processed events
type Repository interface {
	CreateNotification(ctx context.Context, tx pgx.Tx, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error)

	// IsEventProcessed checks if an event has already been processed
	IsEventProcessed(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (bool, error)

	// MarkEventProcessed marks an event as processed to prevent duplicates
	MarkEventProcessed(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) error
}

// LivePublisher pushes updates to connected clients. Delivery is best effort.
type LivePublisher interface {
	PublishNotification(ctx context.Context, n *Notification) error
	PublishBid(ctx context.Context, event *bids.BidPlacedEvent) error
}
