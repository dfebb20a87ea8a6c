//go:build integration

package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floroz/hammer/internal/adapters/database"
	"github.com/floroz/hammer/internal/adapters/events"
	"github.com/floroz/hammer/internal/domain/auctions"
	"github.com/floroz/hammer/internal/domain/bids"
	"github.com/floroz/hammer/internal/domain/notifications"
	"github.com/floroz/hammer/internal/testhelpers"
	pkgdb "github.com/floroz/hammer/pkg/database"
	pkgevents "github.com/floroz/hammer/pkg/events"
	pkgtesthelpers "github.com/floroz/hammer/pkg/testhelpers"
)

func TestBidEventsProducer_PublishesPendingEvents(t *testing.T) {
	ctx := context.Background()
	logger := testhelpers.DiscardLogger()

	broker := pkgtesthelpers.NewTestRabbitMQ(t)
	defer broker.Close()

	testDB := testhelpers.NewTestDatabase(t)
	defer testDB.Close()
	pool := testDB.Pool

	conn, err := amqp.Dial(broker.URL)
	require.NoError(t, err)
	defer conn.Close()

	producer, err := events.NewBidEventsProducer(pool, conn, pkgevents.RelayConfig{
		BatchSize: 10,
		Interval:  100 * time.Millisecond,
	}, logger)
	require.NoError(t, err)
	defer producer.Close()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	q, err := ch.QueueDeclare("", false, false, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "bid.*", events.DefaultExchange, false, nil))

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	require.NoError(t, err)

	producerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		_ = producer.Run(producerCtx)
	}()

	notice := notifications.Notice{
		EventID:    uuid.New(),
		UserID:     uuid.New(),
		Kind:       notifications.KindOutbid,
		AuctionID:  uuid.New(),
		BidID:      uuid.New(),
		Amount:     decimal.NewFromInt(200000),
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, database.NewOutboxSink(pool).Enqueue(ctx, notice))

	select {
	case msg := <-msgs:
		assert.Equal(t, bids.EventTypeBidOutbid, msg.RoutingKey)
		assert.Equal(t, notice.EventID.String(), msg.MessageId)
		assert.Equal(t, pkgevents.ContentType, msg.ContentType)

		decoded, err := notifications.DecodeOutbid(msg.Body)
		require.NoError(t, err)
		assert.Equal(t, notice.UserID, decoded.UserID)
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout waiting for message from RabbitMQ")
	}

	require.Eventually(t, func() bool {
		var status string
		err := pool.QueryRow(ctx, "SELECT status::text FROM outbox_events WHERE id = $1", notice.EventID).Scan(&status)
		return err == nil && status == string(pkgevents.OutboxStatusPublished)
	}, 5*time.Second, 100*time.Millisecond, "Event status should be updated to 'published'")
}

// TestOutbidPipeline drives a displaced bidder from PlaceBid to a stored notification
func TestOutbidPipeline(t *testing.T) {
	ctx := context.Background()
	logger := testhelpers.DiscardLogger()

	broker := pkgtesthelpers.NewTestRabbitMQ(t)
	defer broker.Close()

	testDB := testhelpers.NewTestDatabase(t)
	defer testDB.Close()
	pool := testDB.Pool

	conn, err := amqp.Dial(broker.URL)
	require.NoError(t, err)
	defer conn.Close()

	txManager := pkgdb.NewPostgresTransactionManager(pool, time.Second)
	notificationRepo := database.NewPostgresNotificationRepository(pool)
	service := notifications.NewService(notificationRepo, txManager, nil, logger)

	dispatcher := notifications.NewDispatcher(database.NewOutboxSink(pool), notifications.DispatcherConfig{Workers: 1}, logger)
	coordinator := bids.NewCoordinator(
		txManager,
		database.NewPostgresAuctionRepository(pool),
		database.NewPostgresBidRepository(pool),
		database.NewPostgresOutboxRepository(pool),
		dispatcher,
	)

	producer, err := events.NewBidEventsProducer(pool, conn, pkgevents.RelayConfig{Interval: 100 * time.Millisecond}, logger)
	require.NoError(t, err)
	defer producer.Close()

	consumer := events.NewNotificationConsumer(conn, service, "", logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = dispatcher.Run(runCtx) }()
	go func() { _ = producer.Run(runCtx) }()
	go func() { _ = consumer.Run(runCtx) }()

	now := time.Now().UTC()
	auction := &auctions.Auction{
		ID:                uuid.New(),
		CreatorID:         uuid.New(),
		Title:             "Leica M3",
		Status:            auctions.StatusActive,
		StartAt:           now.Add(-time.Hour),
		EndAt:             now.Add(24 * time.Hour),
		CurrentHighestBid: decimal.NewFromInt(100000),
		BidIncrement:      decimal.NewFromInt(50000),
	}
	testhelpers.SeedAuction(t, pool, auction)

	u1, u2 := uuid.New(), uuid.New()
	_, err = coordinator.PlaceBid(ctx, bids.PlaceBidCommand{AuctionID: auction.ID, BidderID: u1, Amount: decimal.NewFromInt(150000)})
	require.NoError(t, err)
	_, err = coordinator.PlaceBid(ctx, bids.PlaceBidCommand{AuctionID: auction.ID, BidderID: u2, Amount: decimal.NewFromInt(200000)})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		list, err := service.ListNotifications(ctx, u1, 10, 0)
		return err == nil && len(list) == 1
	}, 10*time.Second, 100*time.Millisecond, "u1 should receive exactly one outbid notification")

	list, err := service.ListNotifications(ctx, u1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, notifications.OutbidMessage(auction.ID), list[0].Message)

	other, err := service.ListNotifications(ctx, u2, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}
