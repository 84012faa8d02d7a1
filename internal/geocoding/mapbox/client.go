// Package mapbox provides forward geocoding backed by the Mapbox Geocoding API.
package mapbox

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
	ProviderName = "mapbox"

	// DefaultBaseURL is the Mapbox API base URL.
	DefaultBaseURL = "https://api.mapbox.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 5 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Mapbox geocoding client.
type ClientConfig struct {
	AccessToken string
	BaseURL     string
	HTTPClient  HTTPDoer
	Timeout     time.Duration
	Registry    *resilience.Registry
	Logger      zerolog.Logger
}

// Client is a Mapbox forward geocoding client.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  HTTPDoer
	logger      zerolog.Logger
}

// NewClient creates a new Mapbox geocoding client.
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

type placesResponse struct {
	Features []feature `json:"features"`
	Message  string    `json:"message,omitempty"`
}

type feature struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"`
}

// Forward resolves a query with the mapbox.places endpoint.
func (c *Client) Forward(ctx context.Context, req geocoding.ForwardRequest) ([]geocoding.Place, error) {
	params := url.Values{}
	params.Set("access_token", c.accessToken)
	params.Set("autocomplete", "true")
	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Proximity != nil {
		params.Set("proximity", req.Proximity.String())
	}

	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s",
		c.baseURL, url.PathEscape(req.Query), params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Mapbox geocoding request failed")
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

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "API rate limit exceeded",
			Err:      geocoding.ErrRateLimitExceeded,
		}
	case resp.StatusCode != http.StatusOK:
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("geocoding provider returned status %d", resp.StatusCode),
			Err:      geocoding.ErrProviderUnavailable,
		}
	}

	var pr placesResponse
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
		if len(f.Center) < 2 {
			continue
		}
		coord := geo.New(f.Center[0], f.Center[1])
		if coord.Validate() != nil {
			continue
		}
		places = append(places, geocoding.Place{
			Coordinate:  coord,
			DisplayName: f.PlaceName,
			ShortName:   f.Text,
		})
	}

	c.logger.Debug().
		Str("query", req.Query).
		Int("result_count", len(places)).
		Msg("received places from Mapbox")

	return places, nil
}
