package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floroz/hammer/internal/domain/auctions"
	"github.com/floroz/hammer/internal/domain/bids"
	"github.com/floroz/hammer/pkg/events"
)

// AuctionRepository implements bids.AuctionRepository and auctions.Repository
type AuctionRepository struct {
	store *Store
}

func NewAuctionRepository(store *Store) *AuctionRepository {
	return &AuctionRepository{store: store}
}

// GetAuctionByID returns a copy of the committed auction
func (r *AuctionRepository) GetAuctionByID(_ context.Context, auctionID uuid.UUID) (*auctions.Auction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	a, ok := r.store.auctions[auctionID]
	if !ok {
		return nil, auctions.ErrNotFound
	}
	return a.Clone(), nil
}

// GetAuctionByIDForUpdate locks the auction for the rest of tx and returns its latest state
func (r *AuctionRepository) GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auctions.Auction, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if err := mtx.lock(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("failed to lock auction: %w", err)
	}

	mtx.mu.Lock()
	defer mtx.mu.Unlock()
	if staged, ok := mtx.auctions[auctionID]; ok {
		return staged.Clone(), nil
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	a, ok := r.store.auctions[auctionID]
	if !ok {
		return nil, auctions.ErrNotFound
	}
	return a.Clone(), nil
}

// SaveAuction stages the auction; tx must hold its lock
func (r *AuctionRepository) SaveAuction(_ context.Context, tx pgx.Tx, auction *auctions.Auction) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if !mtx.holds(auction.ID) {
		return ErrNotLocked
	}

	mtx.mu.Lock()
	defer mtx.mu.Unlock()
	if mtx.done {
		return pgx.ErrTxClosed
	}
	mtx.auctions[auction.ID] = auction.Clone()
	return nil
}

// BidRepository implements bids.BidRepository
type BidRepository struct {
	store *Store
}

func NewBidRepository(store *Store) *BidRepository {
	return &BidRepository{store: store}
}

// AppendBid stages the bid; tx must hold the auction lock
func (r *BidRepository) AppendBid(_ context.Context, tx pgx.Tx, bid *bids.Bid) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if !mtx.holds(bid.AuctionID) {
		return ErrNotLocked
	}

	mtx.mu.Lock()
	defer mtx.mu.Unlock()
	if mtx.done {
		return pgx.ErrTxClosed
	}
	b := *bid
	mtx.bids = append(mtx.bids, &b)
	return nil
}

// FindTopBid considers committed bids and the ones staged in tx
func (r *BidRepository) FindTopBid(_ context.Context, tx pgx.Tx, auctionID uuid.UUID) (*bids.Bid, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	mtx.mu.Lock()
	defer mtx.mu.Unlock()
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var top *bids.Bid
	consider := func(b *bids.Bid) {
		if b.AuctionID != auctionID {
			return
		}
		if top == nil ||
			b.Amount.GreaterThan(top.Amount) ||
			(b.Amount.Equal(top.Amount) && b.BidTime.Before(top.BidTime)) {
			top = b
		}
	}
	for _, b := range r.store.bids[auctionID] {
		consider(b)
	}
	for _, b := range mtx.bids {
		consider(b)
	}

	if top == nil {
		return nil, nil
	}
	out := *top
	return &out, nil
}

// GetBidByID retrieves a committed bid
func (r *BidRepository) GetBidByID(_ context.Context, bidID uuid.UUID) (*bids.Bid, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	b, ok := r.store.bidByID[bidID]
	if !ok {
		return nil, bids.ErrBidNotFound
	}
	out := *b
	return &out, nil
}

// ListBids filters committed bids in memory
func (r *BidRepository) ListBids(_ context.Context, query bids.ListBidsQuery) ([]*bids.Bid, error) {
	r.store.mu.RLock()
	var matched []*bids.Bid
	collect := func(list []*bids.Bid) {
		for _, b := range list {
			if query.Matches(b) {
				out := *b
				matched = append(matched, &out)
			}
		}
	}
	if query.AuctionID != uuid.Nil {
		collect(r.store.bids[query.AuctionID])
	} else {
		for _, list := range r.store.bids {
			collect(list)
		}
	}
	r.store.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less bool
		if query.SortBy == bids.SortByAmount && !a.Amount.Equal(b.Amount) {
			less = a.Amount.LessThan(b.Amount)
		} else if !a.BidTime.Equal(b.BidTime) {
			less = a.BidTime.Before(b.BidTime)
		} else {
			return a.ID.String() < b.ID.String()
		}
		if query.Ascending {
			return less
		}
		return !less
	})

	if query.Offset >= len(matched) {
		return []*bids.Bid{}, nil
	}
	end := query.Offset + query.Limit
	if query.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[query.Offset:end], nil
}

// OutboxRepository implements bids.OutboxRepository
type OutboxRepository struct {
	store *Store
}

func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// SaveEvent stages the event with the rest of tx
func (r *OutboxRepository) SaveEvent(_ context.Context, tx pgx.Tx, event *events.OutboxEvent) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	mtx.mu.Lock()
	defer mtx.mu.Unlock()
	if mtx.done {
		return pgx.ErrTxClosed
	}
	e := *event
	mtx.events = append(mtx.events, &e)
	return nil
}
