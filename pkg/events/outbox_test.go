package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/floroz/hammer/pkg/testhelpers"
)

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) GetPendingEvents(ctx context.Context, tx pgx.Tx, limit int) ([]*OutboxEvent, error) {
	args := m.Called(ctx, tx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepository) UpdateEventStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status OutboxStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, exchange string, event *OutboxEvent) error {
	args := m.Called(ctx, exchange, event)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingEvents(n int) []*OutboxEvent {
	out := make([]*OutboxEvent, n)
	for i := range out {
		out[i] = NewOutboxEvent(uuid.New(), "bid.placed", []byte{byte(i)}, time.Now())
	}
	return out
}

func TestOutboxRelay_ProcessBatch(t *testing.T) {
	cfg := RelayConfig{BatchSize: 5, Interval: time.Second, Exchange: "auction.events"}

	t.Run("publishes and marks every event", func(t *testing.T) {
		tx, txManager := testhelpers.NewMockTx()
		tx.On("Commit", mock.Anything).Return(nil).Once()
		repo := new(MockOutboxRepository)
		pub := new(MockPublisher)

		batch := pendingEvents(3)
		repo.On("GetPendingEvents", mock.Anything, tx, 5).Return(batch, nil)
		for _, e := range batch {
			pub.On("Publish", mock.Anything, "auction.events", e).Return(nil).Once()
			repo.On("UpdateEventStatus", mock.Anything, tx, e.ID, OutboxStatusPublished).Return(nil).Once()
		}

		relay := NewOutboxRelay(repo, pub, txManager, cfg, discardLogger())
		n, err := relay.ProcessBatch(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, n)
		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
		tx.AssertExpectations(t)
	})

	t.Run("empty outbox does not commit", func(t *testing.T) {
		tx, txManager := testhelpers.NewMockTx()
		repo := new(MockOutboxRepository)
		pub := new(MockPublisher)
		repo.On("GetPendingEvents", mock.Anything, tx, 5).Return([]*OutboxEvent{}, nil)

		relay := NewOutboxRelay(repo, pub, txManager, cfg, discardLogger())
		n, err := relay.ProcessBatch(context.Background())

		require.NoError(t, err)
		assert.Zero(t, n)
		tx.AssertNotCalled(t, "Commit", mock.Anything)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("publish failure leaves the batch pending", func(t *testing.T) {
		tx, txManager := testhelpers.NewMockTx()
		repo := new(MockOutboxRepository)
		pub := new(MockPublisher)

		batch := pendingEvents(2)
		repo.On("GetPendingEvents", mock.Anything, tx, 5).Return(batch, nil)
		pub.On("Publish", mock.Anything, "auction.events", batch[0]).Return(nil).Once()
		repo.On("UpdateEventStatus", mock.Anything, tx, batch[0].ID, OutboxStatusPublished).Return(nil).Once()
		pub.On("Publish", mock.Anything, "auction.events", batch[1]).Return(errors.New("channel closed")).Once()

		relay := NewOutboxRelay(repo, pub, txManager, cfg, discardLogger())
		_, err := relay.ProcessBatch(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "channel closed")
		tx.AssertNotCalled(t, "Commit", mock.Anything)
		tx.AssertCalled(t, "Rollback", mock.Anything)
	})

	t.Run("begin failure", func(t *testing.T) {
		txManager := new(testhelpers.MockTxManager)
		txManager.On("BeginTx", mock.Anything).Return(nil, errors.New("pool closed"))

		relay := NewOutboxRelay(new(MockOutboxRepository), new(MockPublisher), txManager, cfg, discardLogger())
		_, err := relay.ProcessBatch(context.Background())
		assert.ErrorContains(t, err, "pool closed")
	})
}

func TestOutboxRelay_RunStopsOnCancel(t *testing.T) {
	tx, txManager := testhelpers.NewMockTx()
	repo := new(MockOutboxRepository)
	var polls atomic.Int32
	repo.On("GetPendingEvents", mock.Anything, tx, 10).
		Run(func(mock.Arguments) { polls.Add(1) }).
		Return([]*OutboxEvent{}, nil)

	relay := NewOutboxRelay(repo, new(MockPublisher), txManager, RelayConfig{Exchange: "auction.events", Interval: 10 * time.Millisecond}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool {
		return polls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
