package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floroz/hammer/internal/domain/notifications"
)

// OutboxSink implements notifications.Sink by writing a bid.outbid outbox row.
// The row is written on its own, after the bid has committed; the relay then
// delivers it at least once.
type OutboxSink struct {
	pool *pgxpool.Pool
}

func NewOutboxSink(pool *pgxpool.Pool) *OutboxSink {
	return &OutboxSink{pool: pool}
}

// Enqueue implements notifications.Sink
func (s *OutboxSink) Enqueue(ctx context.Context, n notifications.Notice) error {
	event, err := notifications.NewOutbidEvent(n)
	if err != nil {
		return err
	}
	return insertEvent(ctx, s.pool, event)
}
