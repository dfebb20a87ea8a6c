package memory

import (
	"context"
	"hash/maphash"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/floroz/hammer/pkg/database"
)

const lockShards = 64

// LockTable hands out exclusive per-key locks with a bounded wait.
// Keys that nobody holds or waits for are removed, so the table only grows with contention.
type LockTable struct {
	seed   maphash.Seed
	shards [lockShards]lockShard
}

type lockShard struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyLock
}

type keyLock struct {
	sem  *semaphore.Weighted
	refs int
}

// NewLockTable creates an empty lock table
func NewLockTable() *LockTable {
	t := &LockTable{seed: maphash.MakeSeed()}
	for i := range t.shards {
		t.shards[i].locks = make(map[uuid.UUID]*keyLock)
	}
	return t
}

func (t *LockTable) shard(key uuid.UUID) *lockShard {
	return &t.shards[maphash.Bytes(t.seed, key[:])%lockShards]
}

// Acquire blocks until key is free, timeout elapses or ctx is done.
// A timeout yields database.ErrLockTimeout; cancellation yields ctx.Err().
// timeout <= 0 waits as long as ctx allows.
func (t *LockTable) Acquire(ctx context.Context, key uuid.UUID, timeout time.Duration) (release func(), err error) {
	s := t.shard(key)

	s.mu.Lock()
	kl, ok := s.locks[key]
	if !ok {
		kl = &keyLock{sem: semaphore.NewWeighted(1)}
		s.locks[key] = kl
	}
	kl.refs++
	s.mu.Unlock()

	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := kl.sem.Acquire(waitCtx, 1); err != nil {
		t.unref(s, key, kl)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, database.ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			kl.sem.Release(1)
			t.unref(s, key, kl)
		})
	}, nil
}

func (t *LockTable) unref(s *lockShard, key uuid.UUID, kl *keyLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(s.locks, key)
	}
}

// Len reports how many keys are currently held or awaited
func (t *LockTable) Len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		n += len(s.locks)
		s.mu.Unlock()
	}
	return n
}
