// Package memory is an in-process implementation of the bid engine's storage ports.
// It mirrors the Postgres adapter: a transaction takes exclusive per-auction locks
// and stages its writes until Commit.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floroz/hammer/internal/domain/auctions"
	"github.com/floroz/hammer/internal/domain/bids"
	"github.com/floroz/hammer/pkg/events"
)

var (
	ErrForeignTx = errors.New("transaction was not started by the memory store")
	ErrNotLocked = errors.New("auction is not locked by this transaction")
)

// Store holds committed state and implements database.TransactionManager
type Store struct {
	locks       *LockTable
	lockTimeout time.Duration

	mu       sync.RWMutex
	auctions map[uuid.UUID]*auctions.Auction
	bids     map[uuid.UUID][]*bids.Bid // per auction, append order
	bidByID  map[uuid.UUID]*bids.Bid
	outbox   []*events.OutboxEvent
}

// NewStore creates an empty store. lockTimeout bounds the wait for an auction lock (0 = unbounded).
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		locks:       NewLockTable(),
		lockTimeout: lockTimeout,
		auctions:    make(map[uuid.UUID]*auctions.Auction),
		bids:        make(map[uuid.UUID][]*bids.Bid),
		bidByID:     make(map[uuid.UUID]*bids.Bid),
	}
}

// PutAuction inserts or replaces an auction outside any transaction
func (s *Store) PutAuction(a *auctions.Auction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctions[a.ID] = a.Clone()
}

// OutboxEvents returns a snapshot of every committed outbox event
func (s *Store) OutboxEvents() []*events.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*events.OutboxEvent(nil), s.outbox...)
}

// BeginTx implements database.TransactionManager
func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{
		store:    s,
		held:     make(map[uuid.UUID]func()),
		auctions: make(map[uuid.UUID]*auctions.Auction),
	}, nil
}

func (s *Store) apply(tx *Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range tx.auctions {
		s.auctions[id] = a
	}
	for _, b := range tx.bids {
		s.bids[b.AuctionID] = append(s.bids[b.AuctionID], b)
		s.bidByID[b.ID] = b
	}
	s.outbox = append(s.outbox, tx.events...)
}

// Tx is a unit of work on the Store. Only Commit and Rollback of pgx.Tx are implemented.
type Tx struct {
	pgx.Tx

	store *Store

	mu       sync.Mutex
	done     bool
	held     map[uuid.UUID]func()
	auctions map[uuid.UUID]*auctions.Auction
	bids     []*bids.Bid
	events   []*events.OutboxEvent
}

func asTx(tx pgx.Tx) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx == nil {
		return nil, ErrForeignTx
	}
	return mtx, nil
}

// lock takes the auction lock unless this transaction already holds it
func (tx *Tx) lock(ctx context.Context, auctionID uuid.UUID) error {
	tx.mu.Lock()
	if tx.done {
		tx.mu.Unlock()
		return pgx.ErrTxClosed
	}
	if _, ok := tx.held[auctionID]; ok {
		tx.mu.Unlock()
		return nil
	}
	tx.mu.Unlock()

	release, err := tx.store.locks.Acquire(ctx, auctionID, tx.store.lockTimeout)
	if err != nil {
		return err
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		release()
		return pgx.ErrTxClosed
	}
	tx.held[auctionID] = release
	return nil
}

func (tx *Tx) holds(auctionID uuid.UUID) bool {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	_, ok := tx.held[auctionID]
	return ok && !tx.done
}

// Commit publishes staged writes. A done ctx aborts the transaction instead.
func (tx *Tx) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return pgx.ErrTxClosed
	}
	if err := ctx.Err(); err != nil {
		tx.finish()
		return err
	}
	tx.store.apply(tx)
	tx.finish()
	return nil
}

// Rollback discards staged writes and releases every lock
func (tx *Tx) Rollback(context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.finish()
	return nil
}

func (tx *Tx) finish() {
	tx.done = true
	for id, release := range tx.held {
		release()
		delete(tx.held, id)
	}
	tx.auctions = nil
	tx.bids = nil
	tx.events = nil
}
