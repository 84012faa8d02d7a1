// Package location tracks the device position that the map uses as the route origin.
package location

import (
	"context"
	"errors"
	"time"

	"github.com/roomy/roomy/internal/geo"
)

// Sentinel errors for location tracking.
var (
	// ErrPermissionDenied indicates foreground location access was refused or is blocked.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrWatchUnavailable indicates the position stream could not be opened.
	ErrWatchUnavailable = errors.New("location watch unavailable")
)

// Permission is the outcome of a foreground location permission request.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	// PermissionBlocked means the user must change the setting in the OS; it behaves like denied.
	PermissionBlocked Permission = "blocked"
)

// Granted reports whether positions may be watched.
func (p Permission) Granted() bool {
	return p == PermissionGranted
}

// ParsePermission maps a client-reported value onto a Permission. Unknown values are denied.
func ParsePermission(s string) Permission {
	switch Permission(s) {
	case PermissionGranted:
		return PermissionGranted
	case PermissionBlocked:
		return PermissionBlocked
	default:
		return PermissionDenied
	}
}

// WatchOptions controls how often a Service emits positions.
type WatchOptions struct {
	MinInterval           time.Duration
	MinDisplacementMeters float64
}

// Service is the platform location service.
type Service interface {
	// RequestPermission checks the current permission and asks for it if undetermined.
	RequestPermission(ctx context.Context) (Permission, error)
	// Watch opens a continuous position stream. The stream ends when ctx is canceled.
	Watch(ctx context.Context, opts WatchOptions) (<-chan geo.Coordinate, error)
}
