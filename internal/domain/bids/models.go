package bids

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types written to the outbox. They are also the routing keys on the exchange.
const (
	EventTypeBidPlaced = "bid.placed"
	EventTypeBidOutbid = "bid.outbid"
)

// MaxAmount is the largest price the ledger can store (NUMERIC(12,2))
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Bid is one accepted offer. Bids are never updated or deleted.
type Bid struct {
	ID        uuid.UUID       `db:"id"`
	AuctionID uuid.UUID       `db:"auction_id"`
	BidderID  uuid.UUID       `db:"bidder_id"`
	Amount    decimal.Decimal `db:"amount"`
	BidTime   time.Time       `db:"bid_time"`
}

type PlaceBidCommand struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
}

// OutbidNotice tells a bidder they no longer hold the top bid
type OutbidNotice struct {
	PreviousBidderID uuid.UUID
	AuctionID        uuid.UUID
	BidID            uuid.UUID
	Amount           decimal.Decimal
	BidTime          time.Time
}

// SortField orders ledger listings
type SortField string

const (
	SortByTime   SortField = "bid_time"
	SortByAmount SortField = "amount"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListBidsQuery filters the ledger. At least one of AuctionID and BidderID is required;
// zero values leave the other filters unset.
type ListBidsQuery struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	From      time.Time
	To        time.Time
	MinAmount decimal.NullDecimal
	MaxAmount decimal.NullDecimal
	SortBy    SortField
	Ascending bool
	Limit     int
	Offset    int
}

// Normalize validates q and fills defaults
func (q *ListBidsQuery) Normalize() error {
	if q.AuctionID == uuid.Nil && q.BidderID == uuid.Nil {
		return ErrInvalidQuery
	}
	switch q.SortBy {
	case "":
		q.SortBy = SortByTime
	case SortByTime, SortByAmount:
	default:
		return ErrInvalidQuery
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return ErrInvalidQuery
	}
	if q.MinAmount.Valid && q.MaxAmount.Valid && q.MaxAmount.Decimal.LessThan(q.MinAmount.Decimal) {
		return ErrInvalidQuery
	}
	if q.Offset < 0 {
		return ErrInvalidQuery
	}
	if q.Limit <= 0 {
		q.Limit = defaultListLimit
	}
	if q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	return nil
}

// Matches applies every filter of q to b. Used by stores that filter in memory.
func (q *ListBidsQuery) Matches(b *Bid) bool {
	if q.AuctionID != uuid.Nil && b.AuctionID != q.AuctionID {
		return false
	}
	if q.BidderID != uuid.Nil && b.BidderID != q.BidderID {
		return false
	}
	if !q.From.IsZero() && b.BidTime.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && b.BidTime.After(q.To) {
		return false
	}
	if q.MinAmount.Valid && b.Amount.LessThan(q.MinAmount.Decimal) {
		return false
	}
	if q.MaxAmount.Valid && b.Amount.GreaterThan(q.MaxAmount.Decimal) {
		return false
	}
	return true
}
