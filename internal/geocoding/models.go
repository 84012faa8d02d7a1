// Package geocoding turns free-text queries into destination candidates.
package geocoding

import (
	"context"
	"errors"

	"github.com/roomy/roomy/internal/geo"
)

// Sentinel errors for geocoding operations.
var (
	// ErrProviderUnavailable indicates a transport failure or a malformed response.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Provider performs forward geocoding.
type Provider interface {
	// Forward resolves a text query into ordered candidate places.
	Forward(ctx context.Context, req ForwardRequest) ([]Place, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// ForwardRequest is a forward geocoding query.
type ForwardRequest struct {
	Query string
	// Proximity biases results towards a point, usually the current origin.
	Proximity *geo.Coordinate
	Limit     int
}

// Place is a geocoding candidate.
type Place struct {
	Coordinate  geo.Coordinate `json:"coordinate"`
	DisplayName string         `json:"displayName"`
	ShortName   string         `json:"shortName"`
}

// Error provides detailed error information from the geocoding provider.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
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

// IsRetryable returns true if the error is transient.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
