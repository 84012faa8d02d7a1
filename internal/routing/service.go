package routing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/roomy/roomy/internal/geo"
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Provider is the directions provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long a computed route is reused for the same pair (default: 1 minute).
	CacheTTL time.Duration

	// CachePrecision is the number of decimal places coordinates are rounded to
	// when building cache keys (default: 5, about 1m).
	CachePrecision int

	// CleanupInterval is how often to clean up expired entries (default: 5 minutes).
	CleanupInterval time.Duration

	// FetchTimeout bounds a shared provider call (default: 15 seconds).
	FetchTimeout time.Duration

	// Recorder receives one observation per provider call (optional).
	Recorder Recorder

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Recorder observes provider calls.
type Recorder interface {
	RecordRoute(ctx context.Context, provider, outcome string, d time.Duration)
}

// Outcomes passed to Recorder.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

// Service computes routes with a short-lived cache.
// Failures are never cached and there is no stale-if-error fallback:
// a failed fetch must clear whatever the map was showing.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	precision       float64
	cleanupInterval time.Duration
	fetchTimeout    time.Duration
	recorder        Recorder
	now             func() time.Time

	group singleflight.Group

	mu          sync.RWMutex
	cache       map[string]*cachedRoute
	lastCleanup time.Time
}

type cachedRoute struct {
	result    *RouteResult
	expiresAt time.Time
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Minute
	}

	precision := cfg.CachePrecision
	if precision == 0 {
		precision = 5
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}

	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = 15 * time.Second
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		precision:       math.Pow10(precision),
		cleanupInterval: cleanupInterval,
		fetchTimeout:    fetchTimeout,
		recorder:        cfg.Recorder,
		now:             now,
		cache:           make(map[string]*cachedRoute),
	}
}

// FetchRoute returns the driving route from origin to destination.
//
// It returns ErrNoRouteFound when the provider has no route, and an error wrapping
// ErrProviderUnavailable for transport failures or malformed responses. Callers treat
// both the same way for display: clear the route.
//
// Concurrent calls for the same pair share one provider call. That call is
// detached from any single caller's cancellation and bounded by FetchTimeout;
// each caller stops waiting when its own ctx is done.
func (s *Service) FetchRoute(ctx context.Context, origin, destination geo.Coordinate) (*RouteResult, error) {
	if err := origin.Validate(); err != nil {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      fmt.Errorf("%w: %v", ErrInvalidCoordinates, err),
		}
	}
	if err := destination.Validate(); err != nil {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      fmt.Errorf("%w: %v", ErrInvalidCoordinates, err),
		}
	}

	key := s.cacheKey(origin, destination)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && s.now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("cache_key", key).
			Msg("cache hit for route")
		return cached.result, nil
	}
	s.mu.RUnlock()

	ch := s.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		return s.fetch(fetchCtx, origin, destination, key)
	})

	select {
	case <-ctx.Done():
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "CANCELED",
			Message:  "route request canceled",
			Err:      fmt.Errorf("%w: %w", ErrProviderUnavailable, ctx.Err()),
		}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug().Str("cache_key", key).Msg("joined in-flight route fetch")
		}
		return res.Val.(*RouteResult), nil
	}
}

func (s *Service) fetch(ctx context.Context, origin, destination geo.Coordinate, key string) (*RouteResult, error) {
	logEvent := func(e *zerolog.Event) *zerolog.Event {
		return e.
			Float64("origin_lat", origin.Lat).
			Float64("origin_lon", origin.Lon).
			Float64("dest_lat", destination.Lat).
			Float64("dest_lon", destination.Lon).
			Str("provider", s.provider.Name())
	}

	// Double-check: a fetch that just finished may have filled the cache.
	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && s.now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.result, nil
	}
	s.mu.RUnlock()

	logEvent(s.logger.Debug()).Msg("fetching route from provider")

	started := s.now()
	resp, err := s.provider.GetDirections(ctx, DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Profile:     ProfileDriving,
	})
	var result *RouteResult
	if err == nil {
		result, err = buildResult(resp)
	}
	s.record(ctx, err, s.now().Sub(started))
	if err != nil {
		if !errors.Is(err, ErrNoRouteFound) && !errors.Is(err, ErrProviderUnavailable) &&
			!errors.Is(err, ErrRateLimitExceeded) && !errors.Is(err, ErrInvalidCoordinates) {
			err = fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		logEvent(s.logger.Warn().Err(err)).Msg("route fetch failed")
		return nil, err
	}

	now := s.now()
	s.mu.Lock()
	s.cache[key] = &cachedRoute{result: result, expiresAt: now.Add(s.cacheTTL)}
	s.cleanupIfNeeded(now)
	s.mu.Unlock()

	logEvent(s.logger.Debug()).
		Float64("distance_m", result.DistanceMeters).
		Float64("duration_s", result.DurationSeconds).
		Int("steps", len(result.StepInstructions)).
		Msg("route computed")

	return result, nil
}

func (s *Service) record(ctx context.Context, err error, d time.Duration) {
	if s.recorder == nil {
		return
	}
	outcome := OutcomeOK
	switch {
	case errors.Is(err, ErrNoRouteFound):
		outcome = OutcomeNotFound
	case err != nil:
		outcome = OutcomeUnavailable
	}
	s.recorder.RecordRoute(ctx, s.provider.Name(), outcome, d)
}

// buildResult reduces a provider response to the first route's display data.
func buildResult(resp *DirectionsResponse) (*RouteResult, error) {
	if resp == nil || len(resp.Routes) == 0 {
		return nil, ErrNoRouteFound
	}

	route := resp.Routes[0]
	box, ok := geo.BoundsOf(route.Geometry)
	if !ok {
		return nil, &Error{
			Provider: resp.Provider,
			Code:     "EMPTY_GEOMETRY",
			Message:  "route has no geometry",
			Err:      ErrProviderUnavailable,
		}
	}

	steps := []string{}
	if len(route.Legs) > 0 {
		for _, step := range route.Legs[0].Steps {
			if strings.TrimSpace(step.Instruction) == "" {
				continue
			}
			steps = append(steps, step.Instruction)
		}
	}

	geometry := make([]geo.Coordinate, len(route.Geometry))
	copy(geometry, route.Geometry)

	return &RouteResult{
		Geometry:         geometry,
		DistanceMeters:   math.Max(0, route.DistanceMeters),
		DurationSeconds:  math.Max(0, route.DurationSeconds),
		StepInstructions: steps,
		BoundingBox:      box,
		Provider:         resp.Provider,
	}, nil
}

// cacheKey identifies an exact (origin, destination) pair rounded to the cache precision.
func (s *Service) cacheKey(origin, destination geo.Coordinate) string {
	round := func(v float64) float64 { return math.Round(v*s.precision) / s.precision }
	return fmt.Sprintf("%s:%g,%g:%g,%g",
		ProfileDriving,
		round(origin.Lon), round(origin.Lat),
		round(destination.Lon), round(destination.Lat),
	)
}

// cleanupIfNeeded removes expired entries. Caller holds s.mu.
func (s *Service) cleanupIfNeeded(now time.Time) {
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}
	s.lastCleanup = now

	expired := 0
	for key, cached := range s.cache {
		if now.After(cached.expiresAt) {
			delete(s.cache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired route cache entries")
	}
}

// InvalidateCache clears all cached routes.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedRoute)
}

// CacheStats contains cache statistics.
type CacheStats struct {
	TotalEntries int
	FreshEntries int
	Provider     string
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	fresh := 0
	for _, c := range s.cache {
		if now.Before(c.expiresAt) {
			fresh++
		}
	}

	return CacheStats{
		TotalEntries: len(s.cache),
		FreshEntries: fresh,
		Provider:     s.provider.Name(),
	}
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}
