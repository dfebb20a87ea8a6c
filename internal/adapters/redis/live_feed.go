package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/floroz/hammer/internal/domain/bids"
	"github.com/floroz/hammer/internal/domain/notifications"
)

// UserChannel is where a user's notifications are published
func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("users:%s:notifications", userID)
}

// AuctionChannel is where an auction's new bids are published
func AuctionChannel(auctionID uuid.UUID) string {
	return fmt.Sprintf("auctions:%s:bids", auctionID)
}

// NotificationMessage is the JSON body sent on UserChannel
type NotificationMessage struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	AuctionID uuid.UUID `json:"auction_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// BidMessage is the JSON body sent on AuctionChannel
type BidMessage struct {
	BidID     uuid.UUID `json:"bid_id"`
	AuctionID uuid.UUID `json:"auction_id"`
	BidderID  uuid.UUID `json:"bidder_id"`
	Amount    string    `json:"amount"`
	BidTime   time.Time `json:"bid_time"`
	EndAt     time.Time `json:"end_at"`
	Extended  bool      `json:"extended"`
}

// LiveFeed implements notifications.LivePublisher with Redis pub/sub
type LiveFeed struct {
	client *redis.Client
}

var _ notifications.LivePublisher = (*LiveFeed)(nil)

func NewLiveFeed(client *redis.Client) *LiveFeed {
	return &LiveFeed{client: client}
}

// PublishNotification sends n to its recipient's channel
func (f *LiveFeed) PublishNotification(ctx context.Context, n *notifications.Notification) error {
	const op = "redis.LiveFeed.PublishNotification"
	return f.publish(ctx, op, UserChannel(n.UserID), NotificationMessage{
		ID:        n.ID,
		Kind:      string(n.Kind),
		AuctionID: n.AuctionID,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	})
}

// PublishBid sends a placed bid to the auction's channel
func (f *LiveFeed) PublishBid(ctx context.Context, e *bids.BidPlacedEvent) error {
	const op = "redis.LiveFeed.PublishBid"
	return f.publish(ctx, op, AuctionChannel(e.AuctionID), BidMessage{
		BidID:     e.BidID,
		AuctionID: e.AuctionID,
		BidderID:  e.BidderID,
		Amount:    e.Amount.StringFixed(2),
		BidTime:   e.BidTime,
		EndAt:     e.EndAt,
		Extended:  e.Extended,
	})
}

func (f *LiveFeed) publish(ctx context.Context, op, channel string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: failed to encode message: %w", op, err)
	}
	if err := f.client.Publish(ctx, channel, string(data)).Err(); err != nil {
		return fmt.Errorf("%s: failed to publish to %s: %w", op, channel, err)
	}
	return nil
}
