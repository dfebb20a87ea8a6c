package bids

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floroz/hammer/internal/domain/auctions"
	"github.com/floroz/hammer/pkg/events"
)

// BidPlacedEvent is the decoded bid.placed payload
type BidPlacedEvent struct {
	EventID   uuid.UUID
	BidID     uuid.UUID
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
	BidTime   time.Time
	EndAt     time.Time
	Extended  bool
}

func newBidPlacedEvent(eventID uuid.UUID, bid *Bid, auction *auctions.Auction, extended bool) (*events.OutboxEvent, error) {
	payload, err := events.MarshalPayload(map[string]any{
		"event_id":   events.UUIDValue(eventID),
		"bid_id":     events.UUIDValue(bid.ID),
		"auction_id": events.UUIDValue(bid.AuctionID),
		"bidder_id":  events.UUIDValue(bid.BidderID),
		"amount":     events.DecimalValue(bid.Amount),
		"bid_time":   events.TimeValue(bid.BidTime),
		"end_at":     events.TimeValue(auction.EndAt),
		"extended":   extended,
	})
	if err != nil {
		return nil, err
	}
	return events.NewOutboxEvent(eventID, EventTypeBidPlaced, payload, bid.BidTime), nil
}

// DecodeBidPlaced parses a bid.placed message body
func DecodeBidPlaced(body []byte) (*BidPlacedEvent, error) {
	p, err := events.UnmarshalPayload(body)
	if err != nil {
		return nil, err
	}

	var e BidPlacedEvent
	if e.EventID, err = p.UUID("event_id"); err != nil {
		return nil, fmt.Errorf("bid.placed: %w", err)
	}
	if e.BidID, err = p.UUID("bid_id"); err != nil {
		return nil, fmt.Errorf("bid.placed: %w", err)
	}
	if e.AuctionID, err = p.UUID("auction_id"); err != nil {
		return nil, fmt.Errorf("bid.placed: %w", err)
	}
	if e.BidderID, err = p.UUID("bidder_id"); err != nil {
		return nil, fmt.Errorf("bid.placed: %w", err)
	}
	if e.Amount, err = p.Decimal("amount"); err != nil {
		return nil, fmt.Errorf("bid.placed: %w", err)
	}
	if e.BidTime, err = p.Time("bid_time"); err != nil {
		return nil, fmt.Errorf("bid.placed: %w", err)
	}
	if e.EndAt, err = p.Time("end_at"); err != nil {
		return nil, fmt.Errorf("bid.placed: %w", err)
	}
	if e.Extended, err = p.Bool("extended"); err != nil {
		return nil, fmt.Errorf("bid.placed: %w", err)
	}
	return &e, nil
}
