package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/api/models"
	"github.com/roomy/roomy/internal/api/response"
	"github.com/roomy/roomy/internal/catalog"
	"github.com/roomy/roomy/internal/location"
	"github.com/roomy/roomy/internal/navigation"
)

// SearchRecorder observes destination searches. telemetry.Instruments implements it.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, outcome string)
}

// MapSessionConfig holds configuration for the MapSessionHandler.
type MapSessionConfig struct {
	Sessions *navigation.Registry
	Catalog  catalog.Repository

	// Searches records search outcomes (optional).
	Searches SearchRecorder

	// CheckOrigin overrides the WebSocket origin check (default: same host or no Origin header).
	CheckOrigin func(r *http.Request) bool

	Logger zerolog.Logger
}

// MapSessionHandler handles map session endpoints. A map session is one open
// map screen: origin tracking, the active destination, its route and the camera.
type MapSessionHandler struct {
	sessions *navigation.Registry
	catalog  catalog.Repository
	searches SearchRecorder
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewMapSessionHandler creates a new MapSessionHandler.
func NewMapSessionHandler(cfg MapSessionConfig) *MapSessionHandler {
	return &MapSessionHandler{
		sessions: cfg.Sessions,
		catalog:  cfg.Catalog,
		searches: cfg.Searches,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
		logger: cfg.Logger,
	}
}

// CreateSession handles POST /v1/map-sessions - open a map screen.
func (h *MapSessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.MapSessionCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	opts := navigation.SessionOptions{Permission: location.ParsePermission(req.Permission)}

	switch {
	case req.HotelID != "":
		hotel, err := h.catalog.GetHotel(r.Context(), req.HotelID)
		if err != nil {
			if errors.Is(err, catalog.ErrHotelNotFound) {
				response.BadRequest(w, r, "validation error", []models.FieldError{
					{Field: "hotelId", Message: "hotel not found", Code: "NOT_FOUND"},
				})
				return
			}
			h.logger.Error().Err(err).Str("hotel_id", req.HotelID).Msg("loading hotel for map session")
			response.InternalError(w, r, "could not load hotel")
			return
		}
		opts.Destination = &navigation.Destination{
			Coordinate: hotel.Location,
			Label:      hotel.Name,
			Source:     navigation.SourceDeeplink,
		}
	case req.Destination != nil:
		opts.Destination = &navigation.Destination{
			Coordinate: req.Destination.Point.Coordinate(),
			Label:      req.Destination.Label,
			Source:     navigation.SourceDeeplink,
		}
	}

	s := h.sessions.Create(r.Context(), owner(r), opts)
	response.Created(w, r, "/v1/map-sessions/"+s.ID, sessionView(s))
}

// GetSession handles GET /v1/map-sessions/{sessionId} - current map state.
func (h *MapSessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, sessionView(s))
}

// DeleteSession handles DELETE /v1/map-sessions/{sessionId} - close the map screen.
// Location tracking stops and in-flight route fetches are canceled.
func (h *MapSessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(owner(r), pathID(r, "sessionId")); err != nil {
		response.NotFound(w, r, "map session not found")
		return
	}
	response.NoContent(w, r)
}

// PushLocation handles POST /v1/map-sessions/{sessionId}/location - a device position fix.
// Fixes are coalesced by the tracker, so the origin may not move for every push.
func (h *MapSessionHandler) PushLocation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.LocationPushRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !s.Tracking() {
		response.Conflict(w, r, "location tracking is not active; send a retry_location event after granting permission")
		return
	}

	if err := s.PushLocation(req.Point.Coordinate()); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	response.Accepted(w, r, "", nil)
}

// PostEvent handles POST /v1/map-sessions/{sessionId}/events - a map gesture.
func (h *MapSessionHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.MapEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := s.Controller
	switch req.Type {
	case models.MapEventSelectDestination:
		c.SelectDestination(req.Point.Coordinate(), strings.TrimSpace(req.Label), navigation.Source(req.Source))
	case models.MapEventClearRoute:
		c.ClearRoute()
	case models.MapEventMapTapped:
		c.MapTapped()
	case models.MapEventRecenter:
		c.Recenter()
	case models.MapEventRetryLocation:
		if err := s.RetryLocation(r.Context(), location.ParsePermission(req.Permission)); err != nil &&
			!errors.Is(err, location.ErrPermissionDenied) {
			h.logger.Warn().Err(err).Str("session_id", s.ID).Msg("restarting location tracking")
		}
	default:
		response.BadRequest(w, r, fmt.Sprintf("unknown event type %q", req.Type), nil)
		return
	}

	response.JSON(w, r, http.StatusOK, sessionView(s))
}

// Search handles POST /v1/map-sessions/{sessionId}/search - destination search.
// The call returns once the debounce window settles. Only the newest query's
// suggestions are applied; a superseded call returns the state as it stands.
func (h *MapSessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	snap := s.Controller.Search(r.Context(), req.Query)
	if h.searches != nil {
		outcome := "empty"
		if len(snap.Suggestions) > 0 {
			outcome = "results"
		}
		h.searches.RecordSearch(r.Context(), outcome)
	}

	response.JSON(w, r, http.StatusOK, models.MapSession{
		ID:        s.ID,
		CreatedAt: models.Timestamp(s.CreatedAt),
		Tracking:  s.Tracking(),
		State:     snap,
	})
}

func (h *MapSessionHandler) session(w http.ResponseWriter, r *http.Request) (*navigation.Session, bool) {
	s, err := h.sessions.Get(owner(r), pathID(r, "sessionId"))
	if err != nil {
		response.NotFound(w, r, "map session not found")
		return nil, false
	}
	return s, true
}

func sessionView(s *navigation.Session) models.MapSession {
	return models.MapSession{
		ID:        s.ID,
		CreatedAt: models.Timestamp(s.CreatedAt),
		Tracking:  s.Tracking(),
		State:     s.Controller.Snapshot(),
	}
}
