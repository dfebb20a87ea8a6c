package bids

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floroz/hammer/internal/domain/auctions"
	"github.com/floroz/hammer/pkg/database"
)

// Coordinator places bids. Each PlaceBid is one unit of work serialized on the auction lock.
type Coordinator struct {
	txManager   database.TransactionManager
	auctionRepo AuctionRepository
	bidRepo     BidRepository
	outboxRepo  OutboxRepository
	notifier    OutbidNotifier
	clock       Clock
	logger      *slog.Logger
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithClock overrides the wall clock used for BidTime and the deadline checks
func WithClock(clock Clock) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

// WithLogger sets the logger, slog.Default() otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// NewCoordinator creates a new bid coordinator. notifier may be nil.
func NewCoordinator(
	txManager database.TransactionManager,
	auctionRepo AuctionRepository,
	bidRepo BidRepository,
	outboxRepo OutboxRepository,
	notifier OutbidNotifier,
	opts ...Option,
) *Coordinator {
	c := &Coordinator{
		txManager:   txManager,
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		outboxRepo:  outboxRepo,
		notifier:    notifier,
		clock:       SystemClock{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// validateBidAmount checks the amount against the minimum next bid of the auction
func validateBidAmount(amount decimal.Decimal, auction *auctions.Auction) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrBidTooLow)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: more than two decimal places", ErrInvalidAmount)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: above %s", ErrInvalidAmount, MaxAmount.StringFixed(2))
	}
	if minimum := auction.MinimumNextBid(); amount.LessThan(minimum) {
		return fmt.Errorf("%w: minimum is %s", ErrBidTooLow, minimum.StringFixed(2))
	}
	return nil
}

// storageError turns an adapter failure into the error the caller sees.
// Cancellation wins over lock timeouts since pgx reports both when ctx ends mid-wait.
func storageError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	if database.IsLockTimeout(err) {
		return fmt.Errorf("%w: %s: %v", ErrConcurrencyTimeout, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// PlaceBid validates and records a bid under the auction lock. The previous top bidder,
// if it is someone else, is notified once the transaction has committed.
func (c *Coordinator) PlaceBid(ctx context.Context, cmd PlaceBidCommand) (*Bid, error) {
	tx, err := c.txManager.BeginTx(ctx)
	if err != nil {
		return nil, storageError(ctx, "failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // no-op once committed
	}()

	// Held until commit or rollback; every concurrent bid on this auction queues here
	auction, err := c.auctionRepo.GetAuctionByIDForUpdate(ctx, tx, cmd.AuctionID)
	if err != nil {
		if errors.Is(err, auctions.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, cmd.AuctionID)
		}
		return nil, storageError(ctx, "failed to lock auction", err)
	}

	now := c.clock.Now()

	if err := auction.CheckBiddable(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}

	if err := validateBidAmount(cmd.Amount, auction); err != nil {
		return nil, err
	}

	previousEnd := auction.EndAt
	extended := auction.ExtendDeadline(now)

	previous, err := c.bidRepo.FindTopBid(ctx, tx, auction.ID)
	if err != nil {
		return nil, storageError(ctx, "failed to read top bid", err)
	}

	bid := &Bid{
		ID:        uuid.New(),
		AuctionID: auction.ID,
		BidderID:  cmd.BidderID,
		Amount:    cmd.Amount,
		BidTime:   now,
	}

	if err := c.bidRepo.AppendBid(ctx, tx, bid); err != nil {
		return nil, storageError(ctx, "failed to append bid", err)
	}

	auction.CurrentHighestBid = cmd.Amount
	auction.UpdatedAt = now
	if err := c.auctionRepo.SaveAuction(ctx, tx, auction); err != nil {
		return nil, storageError(ctx, "failed to save auction", err)
	}

	event, err := newBidPlacedEvent(uuid.New(), bid, auction, extended)
	if err != nil {
		return nil, fmt.Errorf("failed to build bid event: %w", err)
	}
	if err := c.outboxRepo.SaveEvent(ctx, tx, event); err != nil {
		return nil, storageError(ctx, "failed to save outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError(ctx, "failed to commit transaction", err)
	}

	c.logger.Info("Bid placed",
		"auction_id", bid.AuctionID,
		"bid_id", bid.ID,
		"amount", bid.Amount.String(),
	)
	if extended {
		c.logger.Info("Auction deadline extended",
			"auction_id", auction.ID,
			"previous_end_at", previousEnd,
			"end_at", auction.EndAt,
		)
	}

	if previous != nil && previous.BidderID != bid.BidderID && c.notifier != nil {
		c.notifier.NotifyOutbid(OutbidNotice{
			PreviousBidderID: previous.BidderID,
			AuctionID:        bid.AuctionID,
			BidID:            bid.ID,
			Amount:           bid.Amount,
			BidTime:          bid.BidTime,
		})
	}

	return bid, nil
}

// GetBid retrieves a bid by ID
func (c *Coordinator) GetBid(ctx context.Context, bidID uuid.UUID) (*Bid, error) {
	bid, err := c.bidRepo.GetBidByID(ctx, bidID)
	if err != nil {
		if errors.Is(err, ErrBidNotFound) {
			return nil, ErrBidNotFound
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return bid, nil
}

// ListBids lists ledger entries of an auction or a bidder
func (c *Coordinator) ListBids(ctx context.Context, query ListBidsQuery) ([]*Bid, error) {
	if err := query.Normalize(); err != nil {
		return nil, err
	}
	list, err := c.bidRepo.ListBids(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return list, nil
}
