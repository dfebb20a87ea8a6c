package bids

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/floroz/hammer/internal/domain/auctions"
	"github.com/floroz/hammer/pkg/events"
)

// MockAuctionRepository is a mock implementation of AuctionRepository for testing
type MockAuctionRepository struct {
	mock.Mock
}

func (m *MockAuctionRepository) GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auctions.Auction, error) {
	args := m.Called(ctx, tx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auctions.Auction), args.Error(1)
}

func (m *MockAuctionRepository) SaveAuction(ctx context.Context, tx pgx.Tx, auction *auctions.Auction) error {
	args := m.Called(ctx, tx, auction)
	return args.Error(0)
}

// MockBidRepository is a mock implementation of BidRepository for testing
type MockBidRepository struct {
	mock.Mock
}

func (m *MockBidRepository) AppendBid(ctx context.Context, tx pgx.Tx, bid *Bid) error {
	args := m.Called(ctx, tx, bid)
	return args.Error(0)
}

func (m *MockBidRepository) FindTopBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*Bid, error) {
	args := m.Called(ctx, tx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Bid), args.Error(1)
}

func (m *MockBidRepository) GetBidByID(ctx context.Context, bidID uuid.UUID) (*Bid, error) {
	args := m.Called(ctx, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Bid), args.Error(1)
}

func (m *MockBidRepository) ListBids(ctx context.Context, query ListBidsQuery) ([]*Bid, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Bid), args.Error(1)
}

// MockOutboxRepository is a mock implementation of OutboxRepository for testing
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) SaveEvent(ctx context.Context, tx pgx.Tx, event *events.OutboxEvent) error {
	args := m.Called(ctx, tx, event)
	return args.Error(0)
}

// recordingNotifier collects notices in order
type recordingNotifier struct {
	mu      sync.Mutex
	notices []OutbidNotice
}

func (n *recordingNotifier) NotifyOutbid(notice OutbidNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) Notices() []OutbidNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]OutbidNotice(nil), n.notices...)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
