package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floroz/hammer/internal/domain/bids"
	"github.com/floroz/hammer/internal/domain/notifications"
)

func encode(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestChannels(t *testing.T) {
	id := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")
	assert.Equal(t, "users:7d444840-9dc0-11d1-b245-5ffdce74fad2:notifications", UserChannel(id))
	assert.Equal(t, "auctions:7d444840-9dc0-11d1-b245-5ffdce74fad2:bids", AuctionChannel(id))
}

func TestLiveFeed_PublishNotification(t *testing.T) {
	ctx := context.Background()
	n := &notifications.Notification{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Kind:      notifications.KindOutbid,
		AuctionID: uuid.New(),
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	n.Message = notifications.OutbidMessage(n.AuctionID)

	want := encode(t, NotificationMessage{
		ID:        n.ID,
		Kind:      "OUTBID",
		AuctionID: n.AuctionID,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	})

	t.Run("success", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectPublish(UserChannel(n.UserID), want).SetVal(1)

		err := NewLiveFeed(client).PublishNotification(ctx, n)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no subscribers is not an error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectPublish(UserChannel(n.UserID), want).SetVal(0)

		assert.NoError(t, NewLiveFeed(client).PublishNotification(ctx, n))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectPublish(UserChannel(n.UserID), want).SetErr(errors.New("connection refused"))

		err := NewLiveFeed(client).PublishNotification(ctx, n)
		assert.ErrorContains(t, err, "connection refused")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLiveFeed_PublishBid(t *testing.T) {
	ctx := context.Background()
	bidTime := time.Date(2026, 3, 1, 11, 58, 0, 0, time.UTC)
	event := &bids.BidPlacedEvent{
		EventID:   uuid.New(),
		BidID:     uuid.New(),
		AuctionID: uuid.New(),
		BidderID:  uuid.New(),
		Amount:    decimal.NewFromInt(150000),
		BidTime:   bidTime,
		EndAt:     bidTime.Add(7 * time.Minute),
		Extended:  true,
	}

	client, mock := redismock.NewClientMock()
	mock.ExpectPublish(AuctionChannel(event.AuctionID), encode(t, BidMessage{
		BidID:     event.BidID,
		AuctionID: event.AuctionID,
		BidderID:  event.BidderID,
		Amount:    "150000.00",
		BidTime:   event.BidTime,
		EndAt:     event.EndAt,
		Extended:  true,
	})).SetVal(2)

	require.NoError(t, NewLiveFeed(client).PublishBid(ctx, event))
	assert.NoError(t, mock.ExpectationsWereMet())
}
