package mapbox

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomy/roomy/internal/geo"
	"github.com/roomy/roomy/internal/geocoding"
)

const placesFixture = `{
  "type": "FeatureCollection",
  "query": ["eko", "hotel"],
  "features": [
    {"id": "poi.1", "text": "Eko Hotel & Suites", "place_name": "Eko Hotel & Suites, Adetokunbo Ademola Street, Lagos, Nigeria", "center": [3.4305, 6.4267]},
    {"id": "poi.2", "text": "Broken", "place_name": "No center"},
    {"id": "poi.3", "text": "Eko Atlantic", "place_name": "Eko Atlantic, Lagos, Nigeria", "center": [3.4075, 6.4072]}
  ]
}`

type mockHTTPClient struct {
	client *http.Client
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.client.Do(req)
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(ClientConfig{
		AccessToken: "pk.test",
		BaseURL:     server.URL,
		HTTPClient:  &mockHTTPClient{client: server.Client()},
		Logger:      zerolog.Nop(),
	})
}

func TestClient_Forward_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocoding/v5/mapbox.places/eko hotel.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "pk.test", q.Get("access_token"))
		assert.Equal(t, "true", q.Get("autocomplete"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, "3.379200,6.524400", q.Get("proximity"))

		_, _ = w.Write([]byte(placesFixture))
	}))
	defer server.Close()

	origin := geo.New(3.3792, 6.5244)
	places, err := newTestClient(server).Forward(context.Background(), geocoding.ForwardRequest{
		Query:     "eko hotel",
		Proximity: &origin,
		Limit:     5,
	})
	require.NoError(t, err)

	require.Len(t, places, 2)
	assert.Equal(t, geo.New(3.4305, 6.4267), places[0].Coordinate)
	assert.Equal(t, "Eko Hotel & Suites", places[0].ShortName)
	assert.Equal(t, "Eko Atlantic, Lagos, Nigeria", places[1].DisplayName)
}

func TestClient_Forward_NoProximity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("proximity"))
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer server.Close()

	places, err := newTestClient(server).Forward(context.Background(), geocoding.ForwardRequest{Query: "ikeja"})
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestClient_Forward_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"message":"Too Many Requests"}`, geocoding.ErrRateLimitExceeded},
		{"unauthorized", http.StatusUnauthorized, `{"message":"Not Authorized"}`, geocoding.ErrProviderUnavailable},
		{"malformed", http.StatusOK, `{"features":`, geocoding.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server).Forward(context.Background(), geocoding.ForwardRequest{Query: "lekki"})
			assert.ErrorIs(t, err, tt.wantErr)

			var gErr *geocoding.Error
			assert.True(t, errors.As(err, &gErr))
		})
	}
}
