// Package routing fetches driving routes between an origin and a destination
// and derives what the map needs to display them.
package routing

import (
	"context"
	"errors"
	"time"

	"github.com/roomy/roomy/internal/geo"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates a transport failure, a malformed response or an open circuit breaker.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Provider defines the interface for directions providers.
type Provider interface {
	// GetDirections retrieves driving directions between two points.
	GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Profile is the mode of transport requested from the provider.
type Profile string

// ProfileDriving is the only profile the map uses.
const ProfileDriving Profile = "driving"

// DirectionsRequest is the request for computing a route.
type DirectionsRequest struct {
	Origin      geo.Coordinate
	Destination geo.Coordinate
	Profile     Profile
}

// DirectionsResponse is the provider-neutral response.
type DirectionsResponse struct {
	Routes    []Route
	Provider  string
	FetchedAt time.Time
}

// Route is a single route as returned by a provider, geometry already decoded.
type Route struct {
	Geometry        []geo.Coordinate
	DistanceMeters  float64
	DurationSeconds float64
	Legs            []Leg
}

// Leg is a section of a route between two waypoints.
type Leg struct {
	Steps []Step
}

// Step is a single maneuver. Instruction may be empty for some providers.
type Step struct {
	Instruction     string
	DistanceMeters  float64
	DurationSeconds float64
}

// RouteResult is what the map displays for the active origin/destination pair.
// It is replaced wholesale on every fetch and never mutated.
type RouteResult struct {
	Geometry         []geo.Coordinate `json:"geometry"`
	DistanceMeters   float64          `json:"distanceMeters"`
	DurationSeconds  float64          `json:"durationSeconds"`
	StepInstructions []string         `json:"steps"`
	BoundingBox      geo.BoundingBox  `json:"boundingBox"`
	Provider         string           `json:"provider"`
}

// DistanceKm returns the route length in kilometers.
func (r *RouteResult) DistanceKm() float64 {
	return r.DistanceMeters / 1000
}

// DurationMinutes returns the travel time in minutes.
func (r *RouteResult) DurationMinutes() float64 {
	return r.DurationSeconds / 60
}

// Fittable reports whether the geometry has enough points for a bounding-box camera fit.
func (r *RouteResult) Fittable() bool {
	return len(r.Geometry) >= 2
}

// Error provides detailed error information from the routing provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
