package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomy/roomy/internal/booking"
	"github.com/roomy/roomy/internal/booking/publisher"
)

type failingStore struct{}

func (failingStore) Save(context.Context, booking.Draft) (bool, error) {
	return false, errors.New("connection reset")
}

func (failingStore) Get(context.Context, string) (*booking.Draft, error) {
	return nil, booking.ErrRequestNotFound
}

func testDraft() booking.Draft {
	return booking.Draft{
		ID:        "bkr_1",
		SheetID:   "bks_1",
		UserID:    "gst_1",
		HotelID:   "htl_eko",
		Suite:     booking.Suite{ID: "eko-deluxe", PricePerNight: 150000},
		CheckIn:   civil.Date{Year: 2026, Month: time.March, Day: 5},
		CheckOut:  civil.Date{Year: 2026, Month: time.March, Day: 8},
		Nights:    3,
		Guests:    booking.Guests{Adults: 2},
		Subtotal:  450000,
		Currency:  "NGN",
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func encode(t *testing.T, d booking.Draft) *pubsub.Message {
	t.Helper()
	msg, err := publisher.Encode(d)
	require.NoError(t, err)
	msg.ID = "msg-" + d.ID
	return msg
}

func TestDefaultReceiveConfig(t *testing.T) {
	cfg := DefaultReceiveConfig()

	assert.Equal(t, 10, cfg.MaxOutstandingMessages)
	assert.Equal(t, 10*time.Minute, cfg.MaxExtension)
	assert.Equal(t, 30*time.Second, cfg.HandleTimeout)

	partial := ReceiveConfig{MaxOutstandingMessages: 50}.withDefaults()
	assert.Equal(t, 50, partial.MaxOutstandingMessages)
	assert.Equal(t, 10*time.Minute, partial.MaxExtension)
}

func TestBookingConsumer_StoresDraft(t *testing.T) {
	store := booking.NewInMemoryRequestStore()
	c := newConsumer(store, time.Second, zerolog.Nop())

	assert.True(t, bool(c.handleMessage(context.Background(), encode(t, testDraft()))))

	saved, err := store.Get(context.Background(), "bkr_1")
	require.NoError(t, err)
	assert.Equal(t, int64(450000), saved.Subtotal)
	assert.Equal(t, civil.Date{Year: 2026, Month: time.March, Day: 8}, saved.CheckOut)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Stored)
	assert.False(t, stats.LastStored.IsZero())
}

func TestBookingConsumer_RedeliveryIsAcked(t *testing.T) {
	store := booking.NewInMemoryRequestStore()
	c := newConsumer(store, time.Second, zerolog.Nop())

	msg := encode(t, testDraft())
	require.True(t, bool(c.handleMessage(context.Background(), msg)))
	assert.True(t, bool(c.handleMessage(context.Background(), msg)))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Stored)
	assert.Equal(t, int64(1), stats.Duplicates)
}

func TestBookingConsumer_Rejects(t *testing.T) {
	tests := []struct {
		name string
		msg  *pubsub.Message
	}{
		{
			name: "malformed JSON",
			msg:  &pubsub.Message{Data: []byte("{")},
		},
		{
			name: "missing draft id",
			msg:  &pubsub.Message{Data: []byte(`{"hotelId":"htl_eko"}`)},
		},
		{
			name: "unknown event type",
			msg: &pubsub.Message{
				Data:       []byte(`{"id":"bkr_2"}`),
				Attributes: map[string]string{"event_type": "booking.canceled"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := booking.NewInMemoryRequestStore()
			c := newConsumer(store, time.Second, zerolog.Nop())

			assert.True(t, bool(c.handleMessage(context.Background(), tt.msg)), "poison messages are acked")
			assert.Equal(t, int64(1), c.Stats().Rejected)
			assert.Zero(t, c.Stats().Stored)
		})
	}
}

func TestBookingConsumer_StoreFailureIsNacked(t *testing.T) {
	c := newConsumer(failingStore{}, time.Second, zerolog.Nop())

	assert.False(t, bool(c.handleMessage(context.Background(), encode(t, testDraft()))))
	assert.Equal(t, int64(1), c.Stats().Failed)
}
