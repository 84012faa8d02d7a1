// Package mapbox provides a directions provider backed by the Mapbox Directions API.
package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/provider/resilience"
	"github.com/roomy/roomy/internal/routing"
	"github.com/roomy/roomy/pkg/polyline"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "mapbox"

	// DefaultBaseURL is the Mapbox API base URL.
	DefaultBaseURL = "https://api.mapbox.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Mapbox directions client.
type ClientConfig struct {
	// AccessToken is the Mapbox access token (required).
	AccessToken string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Mapbox Directions API client.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  HTTPDoer
	logger      zerolog.Logger
}

// NewClient creates a new Mapbox directions client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName + "-directions")
		clientCfg.Timeout = timeout
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		accessToken: cfg.AccessToken,
		baseURL:     baseURL,
		httpClient:  httpClient,
		logger:      cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetDirections retrieves a driving route between two points.
func (c *Client) GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	if err := req.Origin.Validate(); err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      routing.ErrInvalidCoordinates,
		}
	}
	if err := req.Destination.Validate(); err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      routing.ErrInvalidCoordinates,
		}
	}

	params := url.Values{}
	params.Set("access_token", c.accessToken)
	params.Set("geometries", "polyline6")
	params.Set("overview", "full")
	params.Set("steps", "true")
	params.Set("alternatives", "false")

	// Coordinates are "lon,lat;lon,lat" in the path.
	endpoint := fmt.Sprintf("%s/directions/v5/mapbox/driving/%s;%s?%s",
		c.baseURL, req.Origin.String(), req.Destination.String(), params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Msg("requesting directions from Mapbox")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Mapbox directions request failed")
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach routing provider",
			Err:      routing.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "READ_FAILED",
			Message:  "reading response body",
			Err:      routing.ErrProviderUnavailable,
		}
	}

	var mbResp directionsResponse
	decodeErr := json.Unmarshal(body, &mbResp)

	// Mapbox reports NoRoute/NoSegment in the body, with 200 or 4xx depending on the API version.
	if decodeErr == nil && (mbResp.Code == codeNoRoute || mbResp.Code == codeNoSegment) {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  mbResp.Message,
			Err:      routing.ErrNoRouteFound,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, mbResp.Message)
	}

	if decodeErr != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "MALFORMED_RESPONSE",
			Message:  "decoding response",
			Err:      fmt.Errorf("%w: %w", routing.ErrProviderUnavailable, decodeErr),
		}
	}
	if mbResp.Code != codeOK {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     mbResp.Code,
			Message:  mbResp.Message,
			Err:      routing.ErrProviderUnavailable,
		}
	}

	result, err := toDirectionsResponse(&mbResp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("route_count", len(result.Routes)).
		Msg("received directions from Mapbox")

	return result, nil
}

func statusError(statusCode int, message string) error {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "API rate limit exceeded, please try again later",
			Err:      routing.ErrRateLimitExceeded,
		}
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "FORBIDDEN",
			Message:  "API access denied - check access token configuration",
			Err:      routing.ErrProviderUnavailable,
		}
	case statusCode == http.StatusUnprocessableEntity:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "INVALID_INPUT",
			Message:  message,
			Err:      routing.ErrInvalidCoordinates,
		}
	case statusCode >= 500:
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "routing provider is temporarily unavailable",
			Err:      routing.ErrProviderUnavailable,
		}
	default:
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  fmt.Sprintf("routing provider returned status %d", statusCode),
			Err:      routing.ErrProviderUnavailable,
		}
	}
}

// toDirectionsResponse converts the Mapbox response to the provider-neutral model.
func toDirectionsResponse(resp *directionsResponse) (*routing.DirectionsResponse, error) {
	routes := make([]routing.Route, 0, len(resp.Routes))

	for i := range resp.Routes {
		mbRoute := &resp.Routes[i]

		geometry, err := polyline.Decode(mbRoute.Geometry, polyline.Precision6)
		if err != nil {
			return nil, &routing.Error{
				Provider: ProviderName,
				Code:     "MALFORMED_GEOMETRY",
				Message:  "decoding route geometry",
				Err:      fmt.Errorf("%w: %w", routing.ErrProviderUnavailable, err),
			}
		}

		route := routing.Route{
			Geometry:        geometry,
			DistanceMeters:  mbRoute.Distance,
			DurationSeconds: mbRoute.Duration,
			Legs:            make([]routing.Leg, 0, len(mbRoute.Legs)),
		}
		for _, l := range mbRoute.Legs {
			leg := routing.Leg{Steps: make([]routing.Step, 0, len(l.Steps))}
			for _, s := range l.Steps {
				leg.Steps = append(leg.Steps, routing.Step{
					Instruction:     s.Maneuver.Instruction,
					DistanceMeters:  s.Distance,
					DurationSeconds: s.Duration,
				})
			}
			route.Legs = append(route.Legs, leg)
		}

		routes = append(routes, route)
	}

	return &routing.DirectionsResponse{
		Routes:    routes,
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}, nil
}
