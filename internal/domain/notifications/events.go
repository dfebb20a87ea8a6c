package notifications

import (
	"fmt"

	"github.com/floroz/hammer/internal/domain/bids"
	"github.com/floroz/hammer/pkg/events"
)

// NewOutbidEvent wraps an outbid notice as a pending bid.outbid outbox row
func NewOutbidEvent(n Notice) (*events.OutboxEvent, error) {
	payload, err := events.MarshalPayload(map[string]any{
		"event_id":    events.UUIDValue(n.EventID),
		"user_id":     events.UUIDValue(n.UserID),
		"kind":        string(n.Kind),
		"auction_id":  events.UUIDValue(n.AuctionID),
		"bid_id":      events.UUIDValue(n.BidID),
		"amount":      events.DecimalValue(n.Amount),
		"occurred_at": events.TimeValue(n.OccurredAt),
	})
	if err != nil {
		return nil, err
	}
	return events.NewOutboxEvent(n.EventID, bids.EventTypeBidOutbid, payload, n.OccurredAt), nil
}

// DecodeOutbid parses a bid.outbid message body
func DecodeOutbid(body []byte) (Notice, error) {
	var n Notice
	p, err := events.UnmarshalPayload(body)
	if err != nil {
		return n, err
	}

	if n.EventID, err = p.UUID("event_id"); err != nil {
		return n, fmt.Errorf("bid.outbid: %w", err)
	}
	if n.UserID, err = p.UUID("user_id"); err != nil {
		return n, fmt.Errorf("bid.outbid: %w", err)
	}
	kind, err := p.String("kind")
	if err != nil {
		return n, fmt.Errorf("bid.outbid: %w", err)
	}
	n.Kind = Kind(kind)
	if n.AuctionID, err = p.UUID("auction_id"); err != nil {
		return n, fmt.Errorf("bid.outbid: %w", err)
	}
	if n.BidID, err = p.UUID("bid_id"); err != nil {
		return n, fmt.Errorf("bid.outbid: %w", err)
	}
	if n.Amount, err = p.Decimal("amount"); err != nil {
		return n, fmt.Errorf("bid.outbid: %w", err)
	}
	if n.OccurredAt, err = p.Time("occurred_at"); err != nil {
		return n, fmt.Errorf("bid.outbid: %w", err)
	}
	return n, nil
}
