package mapbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomy/roomy/internal/geo"
	"github.com/roomy/roomy/internal/routing"
	"github.com/roomy/roomy/pkg/polyline"
)

type mockHTTPClient struct {
	client *http.Client
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.client.Do(req)
}

type mockFailingClient struct{}

func (m *mockFailingClient) Do(_ *http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp: i/o timeout")
}

var routeGeometry = []geo.Coordinate{
	geo.New(3.421900, 6.428100),
	geo.New(3.410000, 6.450000),
	geo.New(3.379200, 6.524400),
}

func directionsBody() string {
	return fmt.Sprintf(`{
  "code": "Ok",
  "routes": [
    {
      "geometry": %q,
      "distance": 11230.4,
      "duration": 1320.5,
      "weight_name": "auto",
      "legs": [
        {
          "summary": "Ozumba Mbadiwe Avenue, Third Mainland Bridge",
          "distance": 11230.4,
          "duration": 1320.5,
          "steps": [
            {"distance": 300, "duration": 40, "name": "Ahmadu Bello Way", "maneuver": {"type": "depart", "instruction": "Drive north on Ahmadu Bello Way."}},
            {"distance": 10930.4, "duration": 1280.5, "name": "Third Mainland Bridge", "maneuver": {"type": "turn", "instruction": "Turn left onto Third Mainland Bridge."}},
            {"distance": 0, "duration": 0, "name": "", "maneuver": {"type": "arrive", "instruction": ""}}
          ]
        }
      ]
    }
  ],
  "waypoints": []
}`, polyline.Encode(routeGeometry, polyline.Precision6))
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(ClientConfig{
		AccessToken: "pk.test",
		BaseURL:     server.URL,
		HTTPClient:  &mockHTTPClient{client: server.Client()},
		Logger:      zerolog.Nop(),
	})
}

func drivingRequest() routing.DirectionsRequest {
	return routing.DirectionsRequest{
		Origin:      geo.New(3.4219, 6.4281),
		Destination: geo.New(3.3792, 6.5244),
		Profile:     routing.ProfileDriving,
	}
}

func TestClient_GetDirections_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/directions/v5/mapbox/driving/3.421900,6.428100;3.379200,6.524400", r.URL.Path)
		assert.Equal(t, "pk.test", r.URL.Query().Get("access_token"))
		assert.Equal(t, "polyline6", r.URL.Query().Get("geometries"))
		assert.Equal(t, "true", r.URL.Query().Get("steps"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(directionsBody()))
	}))
	defer server.Close()

	resp, err := newTestClient(server).GetDirections(context.Background(), drivingRequest())
	require.NoError(t, err)

	assert.Equal(t, ProviderName, resp.Provider)
	require.Len(t, resp.Routes, 1)

	route := resp.Routes[0]
	assert.InDelta(t, 11230.4, route.DistanceMeters, 1e-9)
	assert.InDelta(t, 1320.5, route.DurationSeconds, 1e-9)
	require.Len(t, route.Geometry, 3)
	for i, p := range routeGeometry {
		assert.InDelta(t, p.Lon, route.Geometry[i].Lon, 1e-6)
		assert.InDelta(t, p.Lat, route.Geometry[i].Lat, 1e-6)
	}

	require.Len(t, route.Legs, 1)
	require.Len(t, route.Legs[0].Steps, 3)
	assert.Equal(t, "Turn left onto Third Mainland Bridge.", route.Legs[0].Steps[1].Instruction)
	assert.Empty(t, route.Legs[0].Steps[2].Instruction)
}

func TestClient_GetDirections_NoRoute(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"NoRoute with 200", http.StatusOK, `{"code":"NoRoute","message":"No route found","routes":[]}`},
		{"NoSegment with 422", http.StatusUnprocessableEntity, `{"code":"NoSegment","message":"No road segment could be matched for coordinates"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server).GetDirections(context.Background(), drivingRequest())
			require.Error(t, err)
			assert.ErrorIs(t, err, routing.ErrNoRouteFound)

			var routingErr *routing.Error
			require.ErrorAs(t, err, &routingErr)
			assert.Equal(t, "NO_ROUTE", routingErr.Code)
		})
	}
}

func TestClient_GetDirections_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantCode string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"message":"Too Many Requests"}`, routing.ErrRateLimitExceeded, "RATE_LIMIT"},
		{"bad token", http.StatusUnauthorized, `{"message":"Not Authorized - Invalid Token"}`, routing.ErrProviderUnavailable, "FORBIDDEN"},
		{"invalid input", http.StatusUnprocessableEntity, `{"code":"InvalidInput","message":"Coordinate is invalid"}`, routing.ErrInvalidCoordinates, "INVALID_INPUT"},
		{"server error", http.StatusBadGateway, `upstream`, routing.ErrProviderUnavailable, "SERVER_502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server).GetDirections(context.Background(), drivingRequest())
			assert.ErrorIs(t, err, tt.wantErr)

			var routingErr *routing.Error
			require.ErrorAs(t, err, &routingErr)
			assert.Equal(t, tt.wantCode, routingErr.Code)
		})
	}
}

func TestClient_GetDirections_Malformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"geometry":"_p~iF~ps|","distance":1,"duration":1}]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).GetDirections(context.Background(), drivingRequest())
	assert.ErrorIs(t, err, routing.ErrProviderUnavailable)
	assert.ErrorIs(t, err, polyline.ErrMalformed)
}

func TestClient_GetDirections_NetworkError(t *testing.T) {
	client := NewClient(ClientConfig{
		AccessToken: "pk.test",
		HTTPClient:  &mockFailingClient{},
		Logger:      zerolog.Nop(),
	})

	_, err := client.GetDirections(context.Background(), drivingRequest())
	assert.ErrorIs(t, err, routing.ErrProviderUnavailable)
}

func TestClient_GetDirections_InvalidDestination(t *testing.T) {
	client := NewClient(ClientConfig{
		AccessToken: "pk.test",
		HTTPClient:  &mockFailingClient{},
	})

	req := drivingRequest()
	req.Destination = geo.New(3.4, -95)

	_, err := client.GetDirections(context.Background(), req)
	assert.ErrorIs(t, err, routing.ErrInvalidCoordinates)
}
