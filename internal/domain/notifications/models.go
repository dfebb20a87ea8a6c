package notifications

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind classifies a notification
type Kind string

const (
	KindOutbid Kind = "OUTBID"
)

// Notification is what a user sees in their inbox
type Notification struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Kind      Kind      `db:"kind"`
	AuctionID uuid.UUID `db:"auction_id"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

// Notice is a notification in flight. EventID identifies it across redeliveries.
type Notice struct {
	EventID    uuid.UUID
	UserID     uuid.UUID
	Kind       Kind
	AuctionID  uuid.UUID
	BidID      uuid.UUID
	Amount     decimal.Decimal
	OccurredAt time.Time
}

// OutbidMessage is the inbox text for an outbid notice
func OutbidMessage(auctionID uuid.UUID) string {
	return fmt.Sprintf("You have been outbid on auction %s", auctionID)
}

// Notification materializes n for storage
func (n Notice) Notification(now time.Time) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    n.UserID,
		Kind:      n.Kind,
		AuctionID: n.AuctionID,
		Message:   OutbidMessage(n.AuctionID),
		CreatedAt: now,
	}
}
