package navigation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/geo"
	"github.com/roomy/roomy/internal/geocoding"
	"github.com/roomy/roomy/internal/location"
)

// ErrSessionNotFound indicates the map session does not exist or belongs to another user.
var ErrSessionNotFound = errors.New("map session not found")

// Session is one open map screen: its controller plus the location subscription feeding it.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time

	Controller *Controller
	Location   *location.PushService

	tracker   *location.Tracker
	observer  SessionObserver
	lastSeen  atomic.Int64
	closeOnce sync.Once
}

// SessionOptions configures a new session.
type SessionOptions struct {
	// Permission is the foreground location permission reported by the device.
	Permission location.Permission
	// Destination preselects a destination, e.g. from a hotel deeplink.
	Destination *Destination
}

type sessionDeps struct {
	routes   RouteFetcher
	geocoder geocoding.Provider
	rules    Rules
	observer SessionObserver
	logger   zerolog.Logger
	now      func() time.Time
}

func newSession(ctx context.Context, userID string, opts SessionOptions, deps sessionDeps) *Session {
	id := "map_" + uuid.New().String()
	logger := deps.logger.With().Str("session_id", id).Str("user_id", userID).Logger()

	var searcher *geocoding.Searcher
	if deps.geocoder != nil {
		searcher = geocoding.NewSearcher(geocoding.SearcherConfig{
			Provider: deps.geocoder,
			Logger:   logger,
		})
	}

	rules := deps.rules
	controller := NewController(ControllerConfig{
		Routes:   deps.routes,
		Searcher: searcher,
		Rules:    &rules,
		Logger:   logger,
		Now:      deps.now,
	})

	push := location.NewPushService(opts.Permission)
	tracker := location.NewTracker(location.TrackerConfig{
		Service: push,
		Logger:  logger,
		OnFix:   func(c geo.Coordinate) { controller.UpdateOrigin(c) },
	})

	s := &Session{
		ID:         id,
		UserID:     userID,
		CreatedAt:  deps.now(),
		Controller: controller,
		Location:   push,
		tracker:    tracker,
		observer:   deps.observer,
	}
	s.touch(deps.now())
	if s.observer != nil {
		s.observer.MapSessionOpened(ctx)
	}

	if err := tracker.Start(ctx); err != nil {
		if !errors.Is(err, location.ErrPermissionDenied) {
			logger.Warn().Err(err).Msg("location tracking unavailable")
		}
		controller.Dispatch(LocationUnavailable{})
	}

	if d := opts.Destination; d != nil {
		controller.SelectDestination(d.Coordinate, d.Label, d.Source)
	}

	return s
}

// RetryLocation re-requests permission and restarts tracking, e.g. after the user
// granted access in settings.
func (s *Session) RetryLocation(ctx context.Context, permission location.Permission) error {
	s.Location.SetPermission(permission)
	if err := s.tracker.Start(ctx); err != nil {
		s.Controller.Dispatch(LocationUnavailable{})
		return err
	}
	return nil
}

// PushLocation offers a device fix to the tracker.
func (s *Session) PushLocation(c geo.Coordinate) error {
	return s.Location.Push(c)
}

// Tracking reports whether a location subscription is open.
func (s *Session) Tracking() bool {
	return s.tracker.Running()
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen is the last time the session was used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Close tears down the location subscription and the controller.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.tracker.Stop()
		s.Controller.Close()
		if s.observer != nil {
			s.observer.MapSessionClosed(context.Background())
		}
	})
}
