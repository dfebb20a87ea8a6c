package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/floroz/hammer/internal/domain/bids"
	"github.com/floroz/hammer/internal/domain/notifications"
	pkgevents "github.com/floroz/hammer/pkg/events"
)

const (
	DefaultExchange    = "auction.events"
	NotificationsQueue = "notifications"
)

// EventProcessor handles decoded bid events
type EventProcessor interface {
	ProcessOutbid(ctx context.Context, n notifications.Notice) error
	ProcessBidPlaced(ctx context.Context, event *bids.BidPlacedEvent) error
}

// NotificationConsumer turns bid.outbid events into stored notifications and
// forwards bid.placed events to live clients
type NotificationConsumer struct {
	conn      *amqp.Connection
	processor EventProcessor
	exchange  string
	queue     string
	logger    *slog.Logger
}

// NewNotificationConsumer creates a new consumer on the default queue
func NewNotificationConsumer(conn *amqp.Connection, processor EventProcessor, exchange string, logger *slog.Logger) *NotificationConsumer {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &NotificationConsumer{
		conn:      conn,
		processor: processor,
		exchange:  exchange,
		queue:     NotificationsQueue,
		logger:    logger,
	}
}

// Run consumes until ctx is done or the broker closes the channel
func (c *NotificationConsumer) Run(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := pkgevents.DeclareQueue(ch, c.exchange, c.queue, bids.EventTypeBidOutbid, bids.EventTypeBidPlaced); err != nil {
		return fmt.Errorf("failed to setup rabbitmq: %w", err)
	}

	msgs, err := ch.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("Waiting for messages...", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("channel closed")
			}
			c.Handle(ctx, d)
		}
	}
}

// Handle processes one delivery and settles it.
// Undecodable or unknown messages are dropped; processing failures are requeued.
func (c *NotificationConsumer) Handle(ctx context.Context, d amqp.Delivery) {
	err := c.dispatch(ctx, d)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			c.logger.Error("Failed to Ack message", "error", ackErr)
		}
	case errors.Is(err, errPermanent):
		c.logger.Error("Discarding message", "error", err, "routing_key", d.RoutingKey, "message_id", d.MessageId)
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Error("Failed to Nack message", "error", nackErr)
		}
	default:
		c.logger.Error("Failed to process event", "error", err, "routing_key", d.RoutingKey, "message_id", d.MessageId)
		if nackErr := d.Nack(false, true); nackErr != nil {
			c.logger.Error("Failed to Nack message (requeue)", "error", nackErr)
		}
	}
}

var errPermanent = errors.New("permanent failure")

func (c *NotificationConsumer) dispatch(ctx context.Context, d amqp.Delivery) error {
	switch d.RoutingKey {
	case bids.EventTypeBidOutbid:
		notice, err := notifications.DecodeOutbid(d.Body)
		if err != nil {
			return fmt.Errorf("%w: %w", errPermanent, err)
		}
		if err := c.processor.ProcessOutbid(ctx, notice); err != nil {
			if errors.Is(err, notifications.ErrUnknownKind) {
				return fmt.Errorf("%w: %w", errPermanent, err)
			}
			return err
		}
		return nil
	case bids.EventTypeBidPlaced:
		event, err := bids.DecodeBidPlaced(d.Body)
		if err != nil {
			return fmt.Errorf("%w: %w", errPermanent, err)
		}
		return c.processor.ProcessBidPlaced(ctx, event)
	default:
		return fmt.Errorf("%w: unexpected routing key %q", errPermanent, d.RoutingKey)
	}
}
