package notifications

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/floroz/hammer/internal/domain/bids"
)

// DispatcherConfig sizes the worker pool
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher hands outbid notices to a Sink on background workers.
// NotifyOutbid never blocks: when the queue is full the notice is dropped and logged.
type Dispatcher struct {
	sink    Sink
	cfg     DispatcherConfig
	logger  *slog.Logger
	queue   chan Notice
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

var _ bids.OutbidNotifier = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher; call Run to start delivering
func NewDispatcher(sink Sink, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 5 * time.Second
	}
	return &Dispatcher{
		sink:   sink,
		cfg:    cfg,
		logger: logger,
		queue:  make(chan Notice, cfg.QueueSize),
	}
}

// NotifyOutbid implements bids.OutbidNotifier
func (d *Dispatcher) NotifyOutbid(notice bids.OutbidNotice) {
	n := Notice{
		EventID:    uuid.New(),
		UserID:     notice.PreviousBidderID,
		Kind:       KindOutbid,
		AuctionID:  notice.AuctionID,
		BidID:      notice.BidID,
		Amount:     notice.Amount,
		OccurredAt: notice.BidTime,
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(n, "dispatcher closed")
		return
	}

	select {
	case d.queue <- n:
	default:
		d.drop(n, "queue full")
	}
}

func (d *Dispatcher) drop(n Notice, reason string) {
	d.dropped.Add(1)
	d.logger.Warn("Dropping outbid notice",
		"reason", reason,
		"user_id", n.UserID,
		"auction_id", n.AuctionID,
	)
}

// Dropped returns how many notices were discarded so far
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Run delivers queued notices until Close has been called and the queue is drained,
// or until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < d.cfg.Workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case n, ok := <-d.queue:
					if !ok {
						return nil
					}
					d.deliver(ctx, n)
				}
			}
		})
	}
	return g.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, n Notice) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	if err := d.sink.Enqueue(ctx, n); err != nil {
		d.logger.Error("Failed to deliver outbid notice",
			"error", err,
			"event_id", n.EventID,
			"user_id", n.UserID,
			"auction_id", n.AuctionID,
		)
	}
}

// Close stops accepting notices. Run returns once the remaining ones are delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.queue)
}
