package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floroz/hammer/internal/domain/notifications"
)

// PostgresNotificationRepository implements notifications.Repository
type PostgresNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresNotificationRepository(pool *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{pool: pool}
}

func (r *PostgresNotificationRepository) CreateNotification(ctx context.Context, tx pgx.Tx, n *notifications.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, kind, auction_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.Exec(ctx, query,
		n.ID,
		n.UserID,
		string(n.Kind),
		n.AuctionID,
		n.Message,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListByUser returns a page of a user's notifications, newest first
func (r *PostgresNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*notifications.Notification, error) {
	query := `
		SELECT id, user_id, kind, auction_id, message, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	result := make([]*notifications.Notification, 0)
	for rows.Next() {
		var n notifications.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Kind,
			&n.AuctionID,
			&n.Message,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return result, nil
}

func (r *PostgresNotificationRepository) MarkEventProcessed(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) error {
	query := `INSERT INTO processed_events (event_id) VALUES ($1)`
	_, err := tx.Exec(ctx, query, eventID)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) IsEventProcessed(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM processed_events WHERE event_id = $1`
	var exists int
	err := tx.QueryRow(ctx, query, eventID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check processed event: %w", err)
	}
	return true, nil
}
