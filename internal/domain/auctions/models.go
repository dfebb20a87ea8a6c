package auctions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an auction
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusStarted   Status = "STARTED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
	StatusFailed    Status = "FAILED"
)

// Auction is the row the bid engine serializes on.
// Only CurrentHighestBid, EndAt and UpdatedAt are written by the bid path.
type Auction struct {
	ID                uuid.UUID           `db:"id"`
	CreatorID         uuid.UUID           `db:"creator_id"`
	Title             string              `db:"title"`
	Description       string              `db:"description"`
	Status            Status              `db:"status"`
	StartAt           time.Time           `db:"start_at"`
	EndAt             time.Time           `db:"end_at"`
	CurrentHighestBid decimal.Decimal     `db:"current_highest_bid"`
	ReservePrice      decimal.NullDecimal `db:"reserve_price"` // informational, enforced at settlement
	BidIncrement      decimal.Decimal     `db:"bid_increment"`
	CreatedAt         time.Time           `db:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at"`
}

// MinimumNextBid returns the lowest amount the next bid may carry
func (a *Auction) MinimumNextBid() decimal.Decimal {
	return a.CurrentHighestBid.Add(a.BidIncrement)
}

// Clone returns a copy that shares no mutable state with a
func (a *Auction) Clone() *Auction {
	c := *a
	return &c
}
