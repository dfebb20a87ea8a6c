package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/floroz/hammer/internal/domain/bids"
	"github.com/floroz/hammer/pkg/database"
)

var ErrUnknownKind = errors.New("unknown notification kind")

// Service stores notifications exactly once per event and forwards them to live clients
type Service struct {
	repo      Repository
	txManager database.TransactionManager
	live      LivePublisher
	logger    *slog.Logger
}

// NewService creates a notification service. live may be nil.
func NewService(repo Repository, txManager database.TransactionManager, live LivePublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		live:      live,
		logger:    logger,
	}
}

// ProcessOutbid stores the notice unless its event was already processed
func (s *Service) ProcessOutbid(ctx context.Context, n Notice) error {
	if n.Kind != KindOutbid {
		return fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	isProcessed, err := s.repo.IsEventProcessed(ctx, tx, n.EventID)
	if err != nil {
		return fmt.Errorf("failed to check idempotency: %w", err)
	}
	if isProcessed {
		return nil
	}

	notification := n.Notification(time.Now().UTC())
	if err := s.repo.CreateNotification(ctx, tx, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if err := s.repo.MarkEventProcessed(ctx, tx, n.EventID); err != nil {
		return fmt.Errorf("failed to mark event as processed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if s.live != nil {
		if err := s.live.PublishNotification(ctx, notification); err != nil {
			s.logger.Warn("Failed to publish live notification", "error", err, "user_id", n.UserID)
		}
	}
	return nil
}

// ProcessBidPlaced forwards a new bid to clients watching the auction
func (s *Service) ProcessBidPlaced(ctx context.Context, event *bids.BidPlacedEvent) error {
	if s.live == nil {
		return nil
	}
	if err := s.live.PublishBid(ctx, event); err != nil {
		return fmt.Errorf("failed to publish bid: %w", err)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first
func (s *Service) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}
