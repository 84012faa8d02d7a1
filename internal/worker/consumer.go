package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/booking"
	"github.com/roomy/roomy/internal/booking/publisher"
)

// BookingConsumer receives booking drafts from Pub/Sub and saves them as
// booking requests.
type BookingConsumer struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	store            booking.RequestStore
	handleTimeout    time.Duration
	logger           zerolog.Logger

	stats consumerCounters
}

// ConsumerConfig holds configuration for the booking consumer.
type ConsumerConfig struct {
	ProjectID        string
	SubscriptionName string
	Store            booking.RequestStore
	Receive          ReceiveConfig
	Logger           zerolog.Logger
}

// ConsumerStats counts handled messages since start.
type ConsumerStats struct {
	Stored     int64     `json:"stored"`
	Duplicates int64     `json:"duplicates"`
	Rejected   int64     `json:"rejected"`
	Failed     int64     `json:"failed"`
	LastStored time.Time `json:"lastStoredAt,omitzero"`
}

type consumerCounters struct {
	stored     atomic.Int64
	duplicates atomic.Int64
	rejected   atomic.Int64
	failed     atomic.Int64
	lastStored atomic.Int64
}

// ack tells the caller whether to acknowledge a message.
type ack bool

// NewBookingConsumer creates a consumer for cfg.SubscriptionName.
func NewBookingConsumer(ctx context.Context, cfg ConsumerConfig) (*BookingConsumer, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	receive := cfg.Receive.withDefaults()
	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = receive.MaxOutstandingMessages
	subscriber.ReceiveSettings.MaxExtension = receive.MaxExtension

	c := newConsumer(cfg.Store, receive.HandleTimeout, cfg.Logger)
	c.client = client
	c.subscriber = subscriber
	c.subscriptionName = cfg.SubscriptionName
	return c, nil
}

func newConsumer(store booking.RequestStore, handleTimeout time.Duration, logger zerolog.Logger) *BookingConsumer {
	return &BookingConsumer{
		store:         store,
		handleTimeout: handleTimeout,
		logger:        logger,
	}
}

// Start processes messages until ctx is canceled.
func (c *BookingConsumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("subscription", c.subscriptionName).
		Msg("starting booking consumer")

	return c.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.handleMessage(ctx, msg) {
			msg.Ack()
		} else {
			msg.Nack()
		}
	})
}

// Close closes the Pub/Sub client.
func (c *BookingConsumer) Close() error {
	return c.client.Close()
}

// Stats returns the message counters.
func (c *BookingConsumer) Stats() ConsumerStats {
	s := ConsumerStats{
		Stored:     c.stats.stored.Load(),
		Duplicates: c.stats.duplicates.Load(),
		Rejected:   c.stats.rejected.Load(),
		Failed:     c.stats.failed.Load(),
	}
	if ns := c.stats.lastStored.Load(); ns != 0 {
		s.LastStored = time.Unix(0, ns).UTC()
	}
	return s
}

// handleMessage stores one draft. Undecodable messages are acked so they are
// not redelivered forever; store failures are nacked for retry.
func (c *BookingConsumer) handleMessage(ctx context.Context, msg *pubsub.Message) ack {
	startTime := time.Now()

	logger := c.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	if t := msg.Attributes["event_type"]; t != "" && t != publisher.EventType {
		logger.Warn().Str("event_type", t).Msg("unknown event type")
		c.stats.rejected.Add(1)
		return true
	}

	draft, err := publisher.Decode(msg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		c.stats.rejected.Add(1)
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, c.handleTimeout)
	defer cancel()

	inserted, err := c.store.Save(ctx, draft)
	if err != nil {
		logger.Error().Err(err).Str("draft_id", draft.ID).Msg("failed to store booking request")
		c.stats.failed.Add(1)
		return false
	}

	if !inserted {
		logger.Info().Str("draft_id", draft.ID).Msg("duplicate booking draft ignored")
		c.stats.duplicates.Add(1)
		return true
	}

	c.stats.stored.Add(1)
	c.stats.lastStored.Store(time.Now().UnixNano())
	logger.Info().
		Str("draft_id", draft.ID).
		Str("hotel_id", draft.HotelID).
		Int("nights", draft.Nights).
		Int64("subtotal", draft.Subtotal).
		Dur("duration", time.Since(startTime)).
		Msg("booking request stored")
	return true
}
