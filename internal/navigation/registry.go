package navigation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/geocoding"
)

// RegistryConfig holds configuration for the session registry.
type RegistryConfig struct {
	// Routes computes routes for every session (required).
	Routes RouteFetcher

	// Geocoder backs destination search (optional).
	Geocoder geocoding.Provider

	// Rules are the state machine tunables (default: DefaultRules()).
	Rules *Rules

	// IdleTimeout expires sessions not used for this long (default: 30 minutes).
	IdleTimeout time.Duration

	// ReapInterval is how often Run checks for idle sessions (default: 1 minute).
	ReapInterval time.Duration

	// MaxPerUser caps open sessions per user; the oldest is closed first (default: 3).
	MaxPerUser int

	// Observer is told when sessions open and close (optional).
	Observer SessionObserver

	// Logger for registry operations.
	Logger zerolog.Logger

	// Now overrides the clock (tests).
	Now func() time.Time
}

// SessionObserver tracks session lifecycles. telemetry.Instruments implements it.
type SessionObserver interface {
	MapSessionOpened(ctx context.Context)
	MapSessionClosed(ctx context.Context)
}

// Registry owns every open map session. Sessions are closed on delete or after
// going idle so no location subscription outlives its screen.
type Registry struct {
	deps         sessionDeps
	idleTimeout  time.Duration
	reapInterval time.Duration
	maxPerUser   int
	logger       zerolog.Logger
	now          func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a session registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	rules := DefaultRules()
	if cfg.Rules != nil {
		rules = *cfg.Rules
	}

	idle := cfg.IdleTimeout
	if idle == 0 {
		idle = 30 * time.Minute
	}

	reap := cfg.ReapInterval
	if reap == 0 {
		reap = time.Minute
	}

	maxPerUser := cfg.MaxPerUser
	if maxPerUser == 0 {
		maxPerUser = 3
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Registry{
		deps: sessionDeps{
			routes:   cfg.Routes,
			geocoder: cfg.Geocoder,
			rules:    rules,
			observer: cfg.Observer,
			logger:   cfg.Logger,
			now:      now,
		},
		idleTimeout:  idle,
		reapInterval: reap,
		maxPerUser:   maxPerUser,
		logger:       cfg.Logger,
		now:          now,
		sessions:     make(map[string]*Session),
	}
}

// Create opens a new session for userID.
func (r *Registry) Create(ctx context.Context, userID string, opts SessionOptions) *Session {
	s := newSession(ctx, userID, opts, r.deps)

	r.mu.Lock()
	r.sessions[s.ID] = s
	evicted := r.evictOverflowLocked(userID)
	count := len(r.sessions)
	r.mu.Unlock()

	for _, old := range evicted {
		old.Close()
	}

	r.logger.Info().
		Str("session_id", s.ID).
		Str("user_id", userID).
		Str("permission", string(opts.Permission)).
		Int("open_sessions", count).
		Msg("map session opened")

	return s
}

// evictOverflowLocked removes the oldest sessions of a user above the cap. Caller holds r.mu.
func (r *Registry) evictOverflowLocked(userID string) []*Session {
	var owned []*Session
	for _, s := range r.sessions {
		if s.UserID == userID {
			owned = append(owned, s)
		}
	}

	var evicted []*Session
	for len(owned) > r.maxPerUser {
		oldest := 0
		for i, s := range owned {
			if s.CreatedAt.Before(owned[oldest].CreatedAt) {
				oldest = i
			}
		}
		evicted = append(evicted, owned[oldest])
		delete(r.sessions, owned[oldest].ID)
		owned = append(owned[:oldest], owned[oldest+1:]...)
	}
	return evicted
}

// Get returns a session owned by userID and marks it as used.
func (r *Registry) Get(userID, id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()

	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Delete closes and removes a session.
func (r *Registry) Delete(userID, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok || s.UserID != userID {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	r.mu.Unlock()

	s.Close()
	r.logger.Info().Str("session_id", id).Str("user_id", userID).Msg("map session closed")
	return nil
}

// Reap closes sessions idle for longer than the idle timeout and returns how many were closed.
func (r *Registry) Reap() int {
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		r.logger.Info().Int("expired_sessions", len(idle)).Msg("closed idle map sessions")
	}
	return len(idle)
}

// Run reaps idle sessions until ctx is canceled, then closes everything.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Reap()
		}
	}
}

// Count returns the number of open sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
