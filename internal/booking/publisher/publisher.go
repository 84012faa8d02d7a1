// Package publisher hands confirmed booking drafts to Pub/Sub.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/booking"
)

// EventType is the message attribute identifying draft messages.
const EventType = "booking.draft_submitted"

// Publisher is a booking.ProceedHandler that publishes drafts as JSON.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
	logger    zerolog.Logger
}

// Config holds configuration for the publisher.
type Config struct {
	ProjectID string
	Topic     string
	Logger    zerolog.Logger
}

// New creates a Pub/Sub publisher for cfg.Topic.
func New(ctx context.Context, cfg Config) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &Publisher{
		client:    client,
		publisher: client.Publisher(cfg.Topic),
		topic:     cfg.Topic,
		logger:    cfg.Logger,
	}, nil
}

// HandleDraft publishes the draft and waits for the server ack.
func (p *Publisher) HandleDraft(ctx context.Context, draft booking.Draft) error {
	msg, err := Encode(draft)
	if err != nil {
		return err
	}

	id, err := p.publisher.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing draft %s: %w", draft.ID, err)
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Str("message_id", id).
		Str("draft_id", draft.ID).
		Msg("booking draft published")
	return nil
}

// Close flushes pending messages and closes the client.
func (p *Publisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}

// Encode builds the Pub/Sub message for a draft.
func Encode(draft booking.Draft) (*pubsub.Message, error) {
	data, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("encoding draft: %w", err)
	}
	return &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": EventType,
			"draft_id":   draft.ID,
			"hotel_id":   draft.HotelID,
		},
	}, nil
}

// Decode parses a draft message.
func Decode(msg *pubsub.Message) (booking.Draft, error) {
	var draft booking.Draft
	if err := json.Unmarshal(msg.Data, &draft); err != nil {
		return booking.Draft{}, fmt.Errorf("decoding draft: %w", err)
	}
	if draft.ID == "" {
		return booking.Draft{}, errors.New("decoding draft: missing id")
	}
	return draft, nil
}

var _ booking.ProceedHandler = (*Publisher)(nil)
