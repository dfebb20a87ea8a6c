package bids

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floroz/hammer/internal/domain/auctions"
	"github.com/floroz/hammer/pkg/events"
)

// AuctionRepository is the write side of the auction record store
type AuctionRepository interface {
	// GetAuctionByIDForUpdate loads the auction and holds its exclusive lock until tx ends.
	// Returns auctions.ErrNotFound when the id is unknown.
	GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auctions.Auction, error)

	// SaveAuction persists the fields the bid path mutates: current highest bid and deadline
	SaveAuction(ctx context.Context, tx pgx.Tx, auction *auctions.Auction) error
}

// BidRepository is the append-only bid ledger
type BidRepository interface {
	// AppendBid adds a bid within a transaction
	AppendBid(ctx context.Context, tx pgx.Tx, bid *Bid) error

	// FindTopBid returns the highest bid of an auction, earliest first on ties,
	// or nil when the auction has no bids
	FindTopBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*Bid, error)

	// GetBidByID returns ErrBidNotFound when the id is unknown
	GetBidByID(ctx context.Context, bidID uuid.UUID) (*Bid, error)

	// ListBids expects a normalized query
	ListBids(ctx context.Context, query ListBidsQuery) ([]*Bid, error)
}

// OutboxRepository stores events in the same transaction as the bid
type OutboxRepository interface {
	SaveEvent(ctx context.Context, tx pgx.Tx, event *events.OutboxEvent) error
}

// OutbidNotifier delivers outbid notices after commit.
// Implementations must not block and must not report failure to the caller.
type OutbidNotifier interface {
	NotifyOutbid(notice OutbidNotice)
}

// Clock supplies the acceptance time of bids
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
