// Package openrouteservice provides a directions provider backed by the OpenRouteService API.
package openrouteservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/provider/resilience"
	"github.com/roomy/roomy/internal/routing"
	"github.com/roomy/roomy/pkg/polyline"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "openrouteservice"

	// DefaultBaseURL is the OpenRouteService API base URL.
	DefaultBaseURL = "https://api.openrouteservice.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenRouteService client.
type ClientConfig struct {
	// APIKey is the ORS API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to ORS API).
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

// Client is an OpenRouteService directions client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new OpenRouteService client.
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
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetDirections asks ORS for a single driving-car route with turn instructions.
func (c *Client) GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	if req.Origin.Validate() != nil {
		return nil, orsError("INVALID_ORIGIN", "invalid origin coordinates", routing.ErrInvalidCoordinates)
	}
	if req.Destination.Validate() != nil {
		return nil, orsError("INVALID_DESTINATION", "invalid destination coordinates", routing.ErrInvalidCoordinates)
	}

	body, err := json.Marshal(orsRequest{
		Coordinates: [][]float64{
			{req.Origin.Lon, req.Origin.Lat},
			{req.Destination.Lon, req.Destination.Lat},
		},
		// A long-pressed point may be far from any road; let ORS snap without a radius limit.
		Radiuses:     []float64{-1, -1},
		Instructions: true,
		Geometry:     true,
		Units:        "m",
		Language:     "en",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := c.baseURL + "/v2/directions/" + orsProfileDriving
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	log := c.logger.With().
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Logger()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Debug().Err(err).Msg("ORS directions request failed")
		return nil, orsError("REQUEST_FAILED", "failed to reach routing provider", routing.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, orsError("READ_FAILED", "reading response body", routing.ErrProviderUnavailable)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, respBody)
	}

	var orsResp orsResponse
	if err := json.Unmarshal(respBody, &orsResp); err != nil {
		return nil, orsError("MALFORMED_RESPONSE", "decoding response",
			fmt.Errorf("%w: %w", routing.ErrProviderUnavailable, err))
	}

	result, err := toDirectionsResponse(&orsResp)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("route_count", len(result.Routes)).Msg("received directions from ORS")
	return result, nil
}

func orsError(code, message string, err error) *routing.Error {
	return &routing.Error{Provider: ProviderName, Code: code, Message: message, Err: err}
}

// statusError maps a non-200 ORS reply. The ORS error code in the body wins
// over the HTTP status because ORS answers "no route" with either 400 or 404.
func statusError(statusCode int, body []byte) error {
	var orsErr orsErrorResponse
	message := ""
	if json.Unmarshal(body, &orsErr) == nil {
		message = orsErr.Error.Message
		switch orsErr.Error.Code {
		case orsErrorCodeRouteNotFound, orsErrorCodePointNotFound:
			return orsError("NO_ROUTE", message, routing.ErrNoRouteFound)
		}
	}

	switch {
	case statusCode == http.StatusNotFound:
		return orsError("NO_ROUTE", "no route found between the given points", routing.ErrNoRouteFound)
	case statusCode == http.StatusTooManyRequests:
		return orsError("RATE_LIMIT", "API rate limit exceeded, please try again later", routing.ErrRateLimitExceeded)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return orsError("FORBIDDEN", "API access denied, check ORS_API_KEY", routing.ErrProviderUnavailable)
	case statusCode == http.StatusBadRequest:
		return orsError("BAD_REQUEST", message, routing.ErrInvalidCoordinates)
	case statusCode >= 500:
		return orsError(fmt.Sprintf("SERVER_%d", statusCode), "routing provider is temporarily unavailable", routing.ErrProviderUnavailable)
	default:
		return orsError(fmt.Sprintf("HTTP_%d", statusCode), message, routing.ErrProviderUnavailable)
	}
}

// toDirectionsResponse converts ORS routes to the provider-neutral model.
// Segments become legs and geometry is a precision-5 polyline.
func toDirectionsResponse(resp *orsResponse) (*routing.DirectionsResponse, error) {
	routes := make([]routing.Route, 0, len(resp.Routes))

	for _, r := range resp.Routes {
		geometry, err := polyline.Decode(r.Geometry, polyline.Precision5)
		if err != nil {
			return nil, orsError("MALFORMED_GEOMETRY", "decoding route geometry",
				fmt.Errorf("%w: %w", routing.ErrProviderUnavailable, err))
		}

		legs := make([]routing.Leg, 0, len(r.Segments))
		for _, segment := range r.Segments {
			steps := make([]routing.Step, 0, len(segment.Steps))
			for _, step := range segment.Steps {
				steps = append(steps, routing.Step{
					Instruction:     step.Instruction,
					DistanceMeters:  step.Distance,
					DurationSeconds: step.Duration,
				})
			}
			legs = append(legs, routing.Leg{Steps: steps})
		}

		routes = append(routes, routing.Route{
			Geometry:        geometry,
			DistanceMeters:  r.Summary.Distance,
			DurationSeconds: r.Summary.Duration,
			Legs:            legs,
		})
	}

	return &routing.DirectionsResponse{
		Routes:    routes,
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}, nil
}
