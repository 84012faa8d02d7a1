package location

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/geo"
)

// TrackerConfig holds configuration for a Tracker.
type TrackerConfig struct {
	// Service is the platform location service.
	Service Service

	// Logger for tracker operations.
	Logger zerolog.Logger

	// MinInterval is the minimum time between accepted fixes (default: 1s).
	MinInterval time.Duration

	// MinDisplacementMeters is the minimum movement between accepted fixes (default: 3m).
	MinDisplacementMeters float64

	// OnFix receives every accepted fix. It overwrites the consumer's origin.
	OnFix func(geo.Coordinate)

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Tracker subscribes to a Service and keeps the latest accepted position.
type Tracker struct {
	service         Service
	logger          zerolog.Logger
	minInterval     time.Duration
	minDisplacement float64
	onFix           func(geo.Coordinate)
	now             func() time.Time

	mu       sync.Mutex
	latest   *geo.Coordinate
	acceptAt time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewTracker creates a Tracker. It does nothing until Start.
func NewTracker(cfg TrackerConfig) *Tracker {
	minInterval := cfg.MinInterval
	if minInterval == 0 {
		minInterval = time.Second
	}

	minDisplacement := cfg.MinDisplacementMeters
	if minDisplacement == 0 {
		minDisplacement = 3
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	onFix := cfg.OnFix
	if onFix == nil {
		onFix = func(geo.Coordinate) {}
	}

	return &Tracker{
		service:         cfg.Service,
		logger:          cfg.Logger,
		minInterval:     minInterval,
		minDisplacement: minDisplacement,
		onFix:           onFix,
		now:             now,
	}
}

// Start requests permission and opens the position subscription.
// It returns ErrPermissionDenied when access is refused; the caller keeps its default center.
// Starting a running tracker is a no-op.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.cancel != nil {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	perm, err := t.service.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("requesting location permission: %w", err)
	}
	if !perm.Granted() {
		t.logger.Info().Str("permission", string(perm)).Msg("location permission not granted")
		return fmt.Errorf("%w (%s)", ErrPermissionDenied, perm)
	}

	// The subscription outlives the request that started it; Stop ends it.
	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	fixes, err := t.service.Watch(watchCtx, WatchOptions{
		MinInterval:           t.minInterval,
		MinDisplacementMeters: t.minDisplacement,
	})
	if err != nil {
		cancel()
		return fmt.Errorf("%w: %w", ErrWatchUnavailable, err)
	}

	t.mu.Lock()
	if t.cancel != nil {
		// Lost a race with a concurrent Start.
		t.mu.Unlock()
		cancel()
		return nil
	}
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	go t.run(watchCtx, fixes, done)

	t.logger.Debug().Msg("location tracking started")
	return nil
}

func (t *Tracker) run(ctx context.Context, fixes <-chan geo.Coordinate, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case fix, ok := <-fixes:
			if !ok {
				return
			}
			if t.accept(fix) {
				t.onFix(fix)
			}
		}
	}
}

// accept applies the interval and displacement coalescing rules.
func (t *Tracker) accept(fix geo.Coordinate) bool {
	if err := fix.Validate(); err != nil {
		t.logger.Warn().Err(err).Msg("dropping invalid location fix")
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.latest != nil {
		if now.Sub(t.acceptAt) < t.minInterval {
			return false
		}
		if geo.DistanceMeters(*t.latest, fix) < t.minDisplacement {
			return false
		}
	}

	t.latest = &fix
	t.acceptAt = now
	return true
}

// Latest returns the most recently accepted fix.
func (t *Tracker) Latest() (geo.Coordinate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest == nil {
		return geo.Coordinate{}, false
	}
	return *t.latest, true
}

// Running reports whether the subscription is open.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Stop cancels the subscription and waits for it to wind down.
// No OnFix call happens after Stop returns. Safe to call more than once.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	t.logger.Debug().Msg("location tracking stopped")
}
