package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments are the domain metrics recorded by the map and booking flows.
type Instruments struct {
	routeFetches    metric.Int64Counter
	routeDuration   metric.Float64Histogram
	geocodeSearches metric.Int64Counter
	mapSessions     metric.Int64UpDownCounter
	bookingDrafts   metric.Int64Counter
}

// NewInstruments registers the domain instruments on meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	routeFetches, err := meter.Int64Counter("roomy.route.fetches",
		metric.WithDescription("Route fetches by provider and outcome"),
	)
	if err != nil {
		return nil, err
	}

	routeDuration, err := meter.Float64Histogram("roomy.route.duration",
		metric.WithDescription("Route fetch latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	geocodeSearches, err := meter.Int64Counter("roomy.geocode.searches",
		metric.WithDescription("Destination searches by outcome"),
	)
	if err != nil {
		return nil, err
	}

	mapSessions, err := meter.Int64UpDownCounter("roomy.map.sessions.active",
		metric.WithDescription("Open map sessions"),
	)
	if err != nil {
		return nil, err
	}

	bookingDrafts, err := meter.Int64Counter("roomy.booking.drafts",
		metric.WithDescription("Booking drafts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &Instruments{
		routeFetches:    routeFetches,
		routeDuration:   routeDuration,
		geocodeSearches: geocodeSearches,
		mapSessions:     mapSessions,
		bookingDrafts:   bookingDrafts,
	}, nil
}

// RecordRoute records one route fetch.
func (i *Instruments) RecordRoute(ctx context.Context, provider, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	i.routeFetches.Add(ctx, 1, attrs)
	i.routeDuration.Record(ctx, float64(d.Microseconds())/1000, attrs)
}

// RecordSearch records one geocode search.
func (i *Instruments) RecordSearch(ctx context.Context, outcome string) {
	i.geocodeSearches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// MapSessionOpened increments the open session gauge.
func (i *Instruments) MapSessionOpened(ctx context.Context) {
	i.mapSessions.Add(ctx, 1)
}

// MapSessionClosed decrements the open session gauge.
func (i *Instruments) MapSessionClosed(ctx context.Context) {
	i.mapSessions.Add(ctx, -1)
}

// RecordDraft records a proceed attempt.
func (i *Instruments) RecordDraft(ctx context.Context, outcome string) {
	i.bookingDrafts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
