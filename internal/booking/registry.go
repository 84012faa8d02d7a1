package booking

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SheetRegistryConfig holds configuration for the sheet registry.
type SheetRegistryConfig struct {
	// Handler receives confirmed drafts (default: drafts are logged and dropped).
	Handler ProceedHandler

	// RequireExplicitCheckOut blocks drafts relying on the provisional check-out.
	RequireExplicitCheckOut bool

	// Currency of suite prices (default: NGN).
	Currency string

	// Location decides what "today" is for the calendar (default: time.Local).
	Location *time.Location

	// IdleTimeout expires sheets not used for this long (default: 1 hour).
	IdleTimeout time.Duration

	Logger zerolog.Logger
	Now    func() time.Time
}

// SheetRegistry keeps open booking sheets per user in memory.
type SheetRegistry struct {
	deps        sheetDeps
	idleTimeout time.Duration
	logger      zerolog.Logger

	mu     sync.Mutex
	sheets map[string]*Sheet
}

// NewSheetRegistry creates a sheet registry.
func NewSheetRegistry(cfg SheetRegistryConfig) *SheetRegistry {
	handler := cfg.Handler
	if handler == nil {
		logger := cfg.Logger
		handler = ProceedFunc(func(_ context.Context, d Draft) error {
			logger.Warn().Str("draft_id", d.ID).Msg("no proceed handler configured, draft dropped")
			return nil
		})
	}

	currency := cfg.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	idle := cfg.IdleTimeout
	if idle == 0 {
		idle = time.Hour
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &SheetRegistry{
		deps: sheetDeps{
			handler:  handler,
			opts:     QuoteOptions{RequireExplicitCheckOut: cfg.RequireExplicitCheckOut},
			currency: currency,
			loc:      loc,
			logger:   cfg.Logger,
			now:      now,
		},
		idleTimeout: idle,
		logger:      cfg.Logger,
		sheets:      make(map[string]*Sheet),
	}
}

// Create opens a sheet for userID.
func (r *SheetRegistry) Create(userID string, opts SheetOptions) (*Sheet, error) {
	s, err := newSheet(userID, opts, r.deps)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sheets[s.ID] = s
	r.mu.Unlock()

	r.logger.Debug().
		Str("sheet_id", s.ID).
		Str("user_id", userID).
		Str("hotel_id", opts.HotelID).
		Int("suites", len(opts.Suites)).
		Msg("booking sheet opened")
	return s, nil
}

// Get returns a sheet owned by userID.
func (r *SheetRegistry) Get(userID, id string) (*Sheet, error) {
	r.mu.Lock()
	s, ok := r.sheets[id]
	r.mu.Unlock()

	if !ok || s.UserID != userID {
		return nil, ErrSheetNotFound
	}
	s.touch(r.deps.now())
	return s, nil
}

// Delete removes a sheet.
func (r *SheetRegistry) Delete(userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sheets[id]
	if !ok || s.UserID != userID {
		return ErrSheetNotFound
	}
	delete(r.sheets, id)
	return nil
}

// Reap drops sheets idle past the timeout and returns how many were dropped.
func (r *SheetRegistry) Reap() int {
	cutoff := r.deps.now().Add(-r.idleTimeout)

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, s := range r.sheets {
		if s.idleSince().Before(cutoff) {
			delete(r.sheets, id)
			n++
		}
	}
	return n
}

// Run reaps idle sheets every interval until ctx is canceled.
func (r *SheetRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Reap(); n > 0 {
				r.logger.Info().Int("expired_sheets", n).Msg("dropped idle booking sheets")
			}
		}
	}
}

// Count returns the number of open sheets.
func (r *SheetRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sheets)
}
