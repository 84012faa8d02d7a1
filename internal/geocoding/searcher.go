package geocoding

import (
	"context"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/geo"
)

// SearcherConfig holds configuration for a Searcher.
type SearcherConfig struct {
	// Provider is the geocoding provider.
	Provider Provider

	// Logger for search operations.
	Logger zerolog.Logger

	// Debounce is how long a query must stay the latest before it is sent (default: 350ms).
	Debounce time.Duration

	// MinQueryLength is the shortest query, in characters, that reaches the provider (default: 2).
	MinQueryLength int

	// Limit is the maximum number of suggestions requested (default: 5).
	Limit int

	// Wait blocks for the debounce window. Overridable in tests.
	Wait func(ctx context.Context, d time.Duration) error
}

// Result is the outcome of one Search call.
type Result struct {
	// Seq is the sequence number assigned when the call was issued.
	Seq uint64
	// Query is the trimmed query text.
	Query string
	// Places is never nil; empty on short input, supersession or provider failure.
	Places []Place
	// Applied is true only if no later call was issued before this one finished.
	Applied bool
}

// Searcher debounces forward geocoding for a single user.
// Every call gets a sequence number and only the most recently issued call may be applied.
type Searcher struct {
	provider Provider
	logger   zerolog.Logger
	debounce time.Duration
	minLen   int
	limit    int
	wait     func(ctx context.Context, d time.Duration) error

	seq atomic.Uint64
}

// NewSearcher creates a Searcher.
func NewSearcher(cfg SearcherConfig) *Searcher {
	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = 350 * time.Millisecond
	}

	minLen := cfg.MinQueryLength
	if minLen == 0 {
		minLen = 2
	}

	limit := cfg.Limit
	if limit == 0 {
		limit = 5
	}

	wait := cfg.Wait
	if wait == nil {
		wait = sleepContext
	}

	return &Searcher{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		debounce: debounce,
		minLen:   minLen,
		limit:    limit,
		wait:     wait,
	}
}

// Search resolves query into candidates. It blocks for the debounce window and the provider call.
// Short queries return immediately with no remote call but still supersede earlier calls.
func (s *Searcher) Search(ctx context.Context, query string, proximity *geo.Coordinate) Result {
	seq := s.seq.Add(1)
	query = strings.TrimSpace(query)
	result := Result{Seq: seq, Query: query, Places: []Place{}}

	if utf8.RuneCountInString(query) < s.minLen {
		result.Applied = s.isLatest(seq)
		return result
	}

	if err := s.wait(ctx, s.debounce); err != nil {
		return result
	}
	if !s.isLatest(seq) {
		s.logger.Debug().
			Str("query", query).
			Uint64("seq", seq).
			Msg("search superseded before dispatch")
		return result
	}

	places, err := s.provider.Forward(ctx, ForwardRequest{
		Query:     query,
		Proximity: proximity,
		Limit:     s.limit,
	})
	if err != nil {
		s.logger.Warn().Err(err).
			Str("provider", s.provider.Name()).
			Str("query", query).
			Msg("geocoding failed, returning no suggestions")
		places = nil
	}
	if places != nil {
		result.Places = places
	}

	result.Applied = s.isLatest(seq)
	if !result.Applied {
		s.logger.Debug().
			Str("query", query).
			Uint64("seq", seq).
			Msg("discarding stale suggestions")
		result.Places = []Place{}
	}
	return result
}

// Latest returns the sequence number of the most recently issued call.
func (s *Searcher) Latest() uint64 {
	return s.seq.Load()
}

// Supersede invalidates any in-flight call, e.g. when the search UI is dismissed.
func (s *Searcher) Supersede() uint64 {
	return s.seq.Add(1)
}

func (s *Searcher) isLatest(seq uint64) bool {
	return s.seq.Load() == seq
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
