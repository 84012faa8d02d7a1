package navigation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/geo"
	"github.com/roomy/roomy/internal/geocoding"
	"github.com/roomy/roomy/internal/routing"
)

// RouteFetcher computes routes. routing.Service implements it.
type RouteFetcher interface {
	FetchRoute(ctx context.Context, origin, destination geo.Coordinate) (*routing.RouteResult, error)
}

// Snapshot is an immutable view of the map state handed to renderers and subscribers.
type Snapshot struct {
	Version        uint64            `json:"version"`
	Origin         *geo.Coordinate   `json:"origin,omitempty"`
	Destination    *Destination      `json:"destination,omitempty"`
	RouteStatus    RouteStatus       `json:"routeStatus"`
	Route          *RouteView        `json:"route,omitempty"`
	SearchOpen     bool              `json:"searchOpen"`
	SearchQuery    string            `json:"searchQuery,omitempty"`
	Suggestions    []geocoding.Place `json:"suggestions"`
	Camera         *Camera           `json:"camera,omitempty"`
	CameraVersion  uint64            `json:"cameraVersion"`
	LocationDenied bool              `json:"locationDenied"`
}

// RouteView is the displayed route with units converted for display.
type RouteView struct {
	*routing.RouteResult
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes float64 `json:"durationMinutes"`
}

// ControllerConfig holds configuration for a Controller.
type ControllerConfig struct {
	// Routes computes routes (required).
	Routes RouteFetcher

	// Searcher runs debounced geocoding (optional; Search is a no-op without it).
	Searcher *geocoding.Searcher

	// Rules are the state machine tunables (default: DefaultRules()).
	Rules *Rules

	// FetchTimeout bounds a single route fetch (default: 15s).
	FetchTimeout time.Duration

	// Logger for controller operations.
	Logger zerolog.Logger

	// Now overrides the clock used to stamp gestures (tests).
	Now func() time.Time
}

// Controller is the single authority over the map state of one screen.
// Events are applied one at a time; route fetches run in the background and
// come back as events, so a result for a superseded pair is discarded by Transition.
type Controller struct {
	routes       RouteFetcher
	searcher     *geocoding.Searcher
	rules        Rules
	fetchTimeout time.Duration
	logger       zerolog.Logger
	now          func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	state         State
	version       uint64
	camera        *Camera
	cameraVersion uint64
	subs          map[uint64]chan Snapshot
	nextSub       uint64
	closed        bool
}

// NewController creates a Controller in the initial state.
func NewController(cfg ControllerConfig) *Controller {
	rules := DefaultRules()
	if cfg.Rules != nil {
		rules = *cfg.Rules
	}

	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = 15 * time.Second
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		routes:       cfg.Routes,
		searcher:     cfg.Searcher,
		rules:        rules,
		fetchTimeout: fetchTimeout,
		logger:       cfg.Logger,
		now:          now,
		ctx:          ctx,
		cancel:       cancel,
		state:        NewState(),
		subs:         make(map[uint64]chan Snapshot),
	}
}

// Dispatch applies an event and executes the resulting effects.
func (c *Controller) Dispatch(ev Event) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dispatchLocked(ev)
}

func (c *Controller) dispatchLocked(ev Event) Snapshot {
	if c.closed {
		return c.snapshotLocked()
	}

	next, effects := c.rules.Transition(c.state, ev)
	c.state = next
	c.version++

	c.logger.Debug().
		Str("event", ev.eventName()).
		Int("effects", len(effects)).
		Str("route_status", string(next.RouteStatus)).
		Msg("map event applied")

	for _, eff := range effects {
		switch e := eff.(type) {
		case FetchRoute:
			c.startFetch(e.Key)
		case MoveCamera:
			cam := e.Camera
			c.camera = &cam
			c.cameraVersion++
		}
	}

	snap := c.snapshotLocked()
	c.publishLocked(snap)
	return snap
}

// UpdateOrigin feeds a new device position.
func (c *Controller) UpdateOrigin(coord geo.Coordinate) Snapshot {
	return c.Dispatch(OriginUpdated{Coordinate: coord})
}

// SelectDestination sets the destination, stamping the gesture with the current time.
func (c *Controller) SelectDestination(coord geo.Coordinate, label string, source Source) Snapshot {
	return c.Dispatch(SelectDestination{Coordinate: coord, Label: label, Source: source, At: c.now()})
}

// ClearRoute removes the destination and route.
func (c *Controller) ClearRoute() Snapshot {
	return c.Dispatch(ClearRoute{})
}

// Recenter moves the camera back to the origin; no-op without one.
func (c *Controller) Recenter() Snapshot {
	return c.Dispatch(Recenter{})
}

// MapTapped dismisses the search UI and drops any pending suggestions.
func (c *Controller) MapTapped() Snapshot {
	if c.searcher != nil {
		c.searcher.Supersede()
	}
	return c.Dispatch(MapTapped{})
}

// Search runs a debounced geocoding query biased towards the current origin.
// It blocks until the query settles; the returned snapshot reflects whatever was applied.
func (c *Controller) Search(ctx context.Context, query string) Snapshot {
	c.mu.Lock()
	c.dispatchLocked(SearchStarted{Query: query})
	var proximity *geo.Coordinate
	if c.state.Origin != nil {
		o := *c.state.Origin
		proximity = &o
	}
	c.mu.Unlock()

	if c.searcher == nil {
		return c.Snapshot()
	}

	res := c.searcher.Search(ctx, query, proximity)
	if !res.Applied {
		return c.Snapshot()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.searcher.Latest() != res.Seq {
		return c.snapshotLocked()
	}
	return c.dispatchLocked(SuggestionsLoaded{Seq: res.Seq, Places: res.Places})
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every applied event.
// Slow subscribers only see the newest snapshot. The channel is closed by the
// returned cancel func or by Close.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// Close cancels in-flight fetches, waits for them and closes all subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *Controller) startFetch(key RouteKey) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(c.ctx, c.fetchTimeout)
		defer cancel()

		result, err := c.routes.FetchRoute(ctx, key.Origin, key.Destination)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				c.logger.Debug().Err(err).Msg("route unavailable, clearing display")
			}
			c.Dispatch(RouteFailed{Key: key, Err: err})
			return
		}
		c.Dispatch(RouteLoaded{Key: key, Result: result})
	}()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := c.state
	snap := Snapshot{
		Version:        c.version,
		Origin:         s.Origin,
		Destination:    s.Destination,
		RouteStatus:    s.RouteStatus,
		SearchOpen:     s.SearchOpen,
		SearchQuery:    s.SearchQuery,
		Suggestions:    s.Suggestions,
		Camera:         c.camera,
		CameraVersion:  c.cameraVersion,
		LocationDenied: s.LocationDown,
	}
	if snap.Suggestions == nil {
		snap.Suggestions = []geocoding.Place{}
	}
	if s.Route != nil {
		snap.Route = &RouteView{
			RouteResult:     s.Route,
			DistanceKm:      s.Route.DistanceKm(),
			DurationMinutes: s.Route.DurationMinutes(),
		}
	}
	return snap
}

func (c *Controller) publishLocked(snap Snapshot) {
	for _, ch := range c.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
