// Package openrouteservice provides forward geocoding backed by the ORS Pelias autocomplete API.
package openrouteservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/geo"
	"github.com/roomy/roomy/internal/geocoding"
	"github.com/roomy/roomy/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "openrouteservice"

	// DefaultBaseURL is the OpenRouteService API base URL.
	DefaultBaseURL = "https://api.openrouteservice.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 5 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the ORS geocoding client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient HTTPDoer
	Timeout    time.Duration
	Registry   *resilience.Registry
	Logger     zerolog.Logger
}

// Client is an ORS geocoding client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new ORS geocoding client.
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
		clientCfg := resilience.DefaultClientConfig(ProviderName + "-geocoding")
		clientCfg.Timeout = timeout
		clientCfg.MaxRetries = 1
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

// peliasResponse is the GeoJSON FeatureCollection returned by Pelias.
type peliasResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Name  string `json:"name"`
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// Forward resolves a query with the Pelias autocomplete endpoint.
func (c *Client) Forward(ctx context.Context, req geocoding.ForwardRequest) ([]geocoding.Place, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("text", req.Query)
	if req.Limit > 0 {
		params.Set("size", strconv.Itoa(req.Limit))
	}
	if req.Proximity != nil {
		params.Set("focus.point.lon", strconv.FormatFloat(req.Proximity.Lon, 'f', 6, 64))
		params.Set("focus.point.lat", strconv.FormatFloat(req.Proximity.Lat, 'f', 6, 64))
	}

	endpoint := c.baseURL + "/geocode/autocomplete?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json, application/geo+json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).Msg("ORS geocoding request failed")
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach geocoding provider",
			Err:      geocoding.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     "READ_FAILED",
			Message:  "reading response body",
			Err:      geocoding.ErrProviderUnavailable,
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "API rate limit exceeded",
			Err:      geocoding.ErrRateLimitExceeded,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("geocoding provider returned status %d", resp.StatusCode),
			Err:      geocoding.ErrProviderUnavailable,
		}
	}

	var pr peliasResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     "MALFORMED_RESPONSE",
			Message:  "decoding response",
			Err:      fmt.Errorf("%w: %w", geocoding.ErrProviderUnavailable, err),
		}
	}

	places := make([]geocoding.Place, 0, len(pr.Features))
	for _, f := range pr.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		coord := geo.New(f.Geometry.Coordinates[0], f.Geometry.Coordinates[1])
		if coord.Validate() != nil {
			continue
		}
		places = append(places, geocoding.Place{
			Coordinate:  coord,
			DisplayName: f.Properties.Label,
			ShortName:   f.Properties.Name,
		})
	}

	return places, nil
}
