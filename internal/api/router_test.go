package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomy/roomy/internal/api"
	"github.com/roomy/roomy/internal/api/handler"
	"github.com/roomy/roomy/internal/api/models"
	"github.com/roomy/roomy/internal/auth"
	"github.com/roomy/roomy/internal/booking"
	"github.com/roomy/roomy/internal/catalog"
	"github.com/roomy/roomy/internal/favorites"
	"github.com/roomy/roomy/internal/geo"
	"github.com/roomy/roomy/internal/navigation"
	"github.com/roomy/roomy/internal/provider/resilience"
	"github.com/roomy/roomy/internal/routing"
)

// today is the calendar day booking sheets consider "today" in these tests.
var today = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type straightRoutes struct{}

func (straightRoutes) FetchRoute(_ context.Context, o, d geo.Coordinate) (*routing.RouteResult, error) {
	geometry := []geo.Coordinate{o, d}
	box, _ := geo.BoundsOf(geometry)
	return &routing.RouteResult{
		Geometry:        geometry,
		DistanceMeters:  4200,
		DurationSeconds: 900,
		BoundingBox:     box,
		Provider:        "test",
	}, nil
}

type testEnv struct {
	router   http.Handler
	jwt      *auth.JWTService
	requests *booking.InMemoryRequestStore
	sessions *navigation.Registry
}

type envOptions struct {
	proceed booking.ProceedHandler
	checks  []handler.ReadinessCheck
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.roomy.ng",
		Audience:   "roomy-api",
	})
	require.NoError(t, err)

	logger := zerolog.New(io.Discard)
	requests := booking.NewInMemoryRequestStore()

	proceed := opts.proceed
	if proceed == nil {
		proceed = booking.ProceedFunc(func(ctx context.Context, d booking.Draft) error {
			_, err := requests.Save(ctx, d)
			return err
		})
	}

	providers := resilience.NewRegistry()
	providers.Register("mapbox-directions", resilience.NewClient(resilience.DefaultClientConfig("mapbox-directions")))

	sessions := navigation.NewRegistry(navigation.RegistryConfig{
		Routes: straightRoutes{},
		Logger: logger,
	})
	t.Cleanup(sessions.Close)

	sheets := booking.NewSheetRegistry(booking.SheetRegistryConfig{
		Handler:  proceed,
		Location: time.UTC,
		Logger:   logger,
		Now:      func() time.Time { return today },
	})

	hotels := catalog.NewSeededRepository()
	favs := favorites.NewService(favorites.ServiceConfig{
		Repository: favorites.NewMemoryRepository(),
		Catalog:    hotels,
		Logger:     logger,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:   "test",
		BuildTime: "2026-01-01T00:00:00Z",
		Logger:    logger,
		JWT:       jwtService,
		Catalog:   hotels,
		Providers: providers,
		Checks:    opts.checks,
		Sessions:  sessions,
		Sheets:    sheets,
		Favorites: favs,
	})

	return &testEnv{router: router, jwt: jwtService, requests: requests, sessions: sessions}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(userID, true)
	require.NoError(t, err)
	return token
}

// do sends a request as userID (no Authorization header when userID is empty).
func (e *testEnv) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(t, userID))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRouter_HealthCheck(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodGet, "/v1/ops/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	health := decode[models.Health](t, w)
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Details["version"])
}

func TestRouter_ReadinessCheck(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		env := newTestEnv(t, envOptions{checks: []handler.ReadinessCheck{
			{Name: "catalog", Check: func(context.Context) error { return nil }},
		}})

		w := env.do(t, http.MethodGet, "/v1/ops/ready", "", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.HealthStatusOK, decode[models.Health](t, w).Status)
	})

	t.Run("failing check", func(t *testing.T) {
		env := newTestEnv(t, envOptions{checks: []handler.ReadinessCheck{
			{Name: "catalog", Check: func(context.Context) error { return errors.New("connection refused") }},
		}})

		w := env.do(t, http.MethodGet, "/v1/ops/ready", "", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		health := decode[models.Health](t, w)
		assert.Equal(t, models.HealthStatusFail, health.Status)
		assert.Equal(t, "connection refused", health.Details["catalog"])
	})
}

func TestRouter_SystemStatus(t *testing.T) {
	env := newTestEnv(t, envOptions{checks: []handler.ReadinessCheck{
		{Name: "catalog", Check: func(context.Context) error { return nil }},
	}})

	t.Run("requires authentication", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/v1/ops/status", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("reports subsystems and providers", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/v1/ops/status", "usr_ops", nil)
		require.Equal(t, http.StatusOK, w.Code)

		status := decode[models.SystemStatus](t, w)
		assert.Equal(t, models.HealthStatusOK, status.Status)
		require.Len(t, status.Subsystems, 1)
		assert.Equal(t, "catalog", status.Subsystems[0].Name)
		require.Len(t, status.Providers, 1)
		assert.Equal(t, "mapbox-directions", status.Providers[0].Provider)
		assert.Equal(t, "closed", status.Providers[0].CircuitState)
	})
}

func TestRouter_GuestTokenCanCallAuthenticatedEndpoints(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/v1/auth/guest", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	tok := decode[models.TokenResponse](t, w)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.True(t, strings.HasPrefix(tok.UserID, "gst_"))
	assert.True(t, tok.ExpiresAt.Time().After(time.Now()))

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tok.UserID, decode[models.TokenResponse](t, rec).UserID)
}

func TestRouter_Unauthorized(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"create map session", http.MethodPost, "/v1/map-sessions"},
		{"get map session", http.MethodGet, "/v1/map-sessions/map_1"},
		{"create booking sheet", http.MethodPost, "/v1/booking-sheets"},
		{"proceed", http.MethodPost, "/v1/booking-sheets/bks_1/proceed"},
		{"refresh", http.MethodPost, "/v1/auth/refresh"},
		{"list favorites", http.MethodGet, "/v1/favorites"},
		{"toggle favorite", http.MethodPost, "/v1/favorites"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, "", nil)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
		})
	}
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	req := httptest.NewRequest(http.MethodPost, "/v1/booking-sheets", strings.NewReader("hotelId=htl_eko"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+env.token(t, "usr_1"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRouter_Hotels(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	t.Run("list", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/v1/hotels", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		list := decode[models.HotelList](t, w)
		require.Len(t, list.Items, 3)
		assert.Equal(t, "Eko Hotel & Suites", list.Items[0].Name)
	})

	t.Run("get with suites", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/v1/hotels/htl_eko", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		hotel := decode[models.Hotel](t, w)
		assert.Equal(t, "htl_eko", hotel.ID)
		assert.Len(t, hotel.Suites, 3)
		assert.InDelta(t, 6.4267, hotel.Location.Lat, 1e-9)
	})

	t.Run("unknown hotel", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/v1/hotels/htl_missing", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("directions link", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/v1/hotels/htl_eko/directions?platform=android", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		link := decode[models.DirectionsLink](t, w)
		assert.Equal(t, "android", link.Platform)
		assert.Contains(t, link.URL, "6.4267")
	})
}

func TestRouter_MapSessionLifecycle(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/v1/map-sessions", "usr_1", models.MapSessionCreateRequest{
		Permission: "granted",
		HotelID:    "htl_eko",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[models.MapSession](t, w)
	assert.Equal(t, "/v1/map-sessions/"+created.ID, w.Header().Get("Location"))
	assert.True(t, created.Tracking)
	require.NotNil(t, created.State.Destination)
	assert.Equal(t, "Eko Hotel & Suites", created.State.Destination.Label)

	base := "/v1/map-sessions/" + created.ID

	w = env.do(t, http.MethodPost, base+"/location", "usr_1", models.LocationPushRequest{
		Point: &models.Point{Lat: 6.4550, Lon: 3.3941},
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	session, err := env.sessions.Get("usr_1", created.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return session.Controller.Snapshot().Route != nil
	}, 2*time.Second, 10*time.Millisecond)

	w = env.do(t, http.MethodGet, base, "usr_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[models.MapSession](t, w)
	require.NotNil(t, view.State.Route)
	assert.InDelta(t, 4.2, view.State.Route.DistanceKm, 1e-9)

	w = env.do(t, http.MethodPost, base+"/events", "usr_1", models.MapEventRequest{Type: models.MapEventClearRoute})
	require.Equal(t, http.StatusOK, w.Code)
	cleared := decode[models.MapSession](t, w)
	assert.Nil(t, cleared.State.Destination)
	assert.Nil(t, cleared.State.Route)

	t.Run("other users cannot see the session", func(t *testing.T) {
		w := env.do(t, http.MethodGet, base, "usr_2", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	w = env.do(t, http.MethodDelete, base, "usr_1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, base, "usr_1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_MapSessionDeniedPermission(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/v1/map-sessions", "usr_1", models.MapSessionCreateRequest{Permission: "denied"})
	require.Equal(t, http.StatusCreated, w.Code)

	created := decode[models.MapSession](t, w)
	assert.False(t, created.Tracking)
	assert.True(t, created.State.LocationDenied)

	w = env.do(t, http.MethodPost, "/v1/map-sessions/"+created.ID+"/location", "usr_1", models.LocationPushRequest{
		Point: &models.Point{Lat: 6.45, Lon: 3.39},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/v1/map-sessions/"+created.ID+"/events", "usr_1", models.MapEventRequest{
		Type:       models.MapEventRetryLocation,
		Permission: "granted",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.MapSession](t, w).Tracking)
}

func TestRouter_MapSessionValidation(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"missing permission", map[string]any{}, "permission"},
		{"unknown permission", map[string]any{"permission": "maybe"}, "permission"},
		{"unknown hotel", map[string]any{"permission": "granted", "hotelId": "htl_missing"}, "hotelId"},
		{"latitude out of range", map[string]any{
			"permission":  "granted",
			"destination": map[string]any{"point": map[string]any{"lat": 91, "lon": 3.4}},
		}, "destination.point.lat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/v1/map-sessions", "usr_1", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			problem := decode[models.Problem](t, w)
			require.NotEmpty(t, problem.Errors)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
		})
	}
}

func TestRouter_MapSessionStream(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/v1/map-sessions", "usr_1", models.MapSessionCreateRequest{Permission: "denied"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.MapSession](t, w)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/v1/map-sessions/" + created.ID + "/stream?access_token=" + env.token(t, "usr_1")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first navigation.Snapshot
	require.NoError(t, conn.ReadJSON(&first))
	assert.True(t, first.LocationDenied)

	w = env.do(t, http.MethodPost, "/v1/map-sessions/"+created.ID+"/events", "usr_1", models.MapEventRequest{
		Type:   models.MapEventSelectDestination,
		Point:  &models.Point{Lat: 6.4474, Lon: 3.4746},
		Label:  "Lekki",
		Source: "search_result",
	})
	require.Equal(t, http.StatusOK, w.Code)

	for {
		var snap navigation.Snapshot
		require.NoError(t, conn.ReadJSON(&snap))
		if snap.Destination != nil {
			assert.Equal(t, "Lekki", snap.Destination.Label)
			break
		}
	}

	w = env.do(t, http.MethodDelete, "/v1/map-sessions/"+created.ID, "usr_1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	for {
		var snap navigation.Snapshot
		err := conn.ReadJSON(&snap)
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err.Error())
			break
		}
	}
}

func TestRouter_BookingSheetFlow(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/v1/booking-sheets", "usr_1", models.BookingSheetCreateRequest{
		HotelID: "htl_eko",
		SuiteID: "eko-deluxe",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	sheet := decode[booking.SheetView](t, w)
	assert.Equal(t, "eko-deluxe", sheet.SuiteID)
	assert.Equal(t, "2026-03-01", sheet.CheckIn.String())
	assert.True(t, sheet.Quote.CheckOutProvisional)
	assert.Equal(t, 1, sheet.Quote.Nights)
	assert.Equal(t, int64(150000), sheet.Quote.Subtotal)

	base := "/v1/booking-sheets/" + sheet.ID

	w = env.do(t, http.MethodPost, base+"/days", "usr_1", models.DayPressRequest{Date: "2026-03-05"})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, base+"/days", "usr_1", models.DayPressRequest{Date: "2026-03-08"})
	require.Equal(t, http.StatusOK, w.Code)

	sheet = decode[booking.SheetView](t, w)
	assert.Equal(t, "2026-03-05", sheet.CheckIn.String())
	require.NotNil(t, sheet.CheckOut)
	assert.Equal(t, "2026-03-08", sheet.CheckOut.String())
	assert.Equal(t, 3, sheet.Quote.Nights)
	assert.Equal(t, int64(450000), sheet.Quote.Subtotal)

	w = env.do(t, http.MethodPost, base+"/guests", "usr_1", models.GuestsRequest{Field: "children", Action: "increment"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.Guests{Adults: 2, Children: 1}, decode[booking.SheetView](t, w).Guests)

	promo := "SUMMER"
	w = env.do(t, http.MethodPatch, base+"/extras", "usr_1", models.ExtrasRequest{PromoCode: &promo})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, base+"/proceed", "usr_1", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	result := decode[models.BookingDraft](t, w)
	assert.Equal(t, sheet.ID, result.SheetID)
	assert.Equal(t, "usr_1", result.Draft.UserID)
	assert.Equal(t, "SUMMER", result.Draft.PromoCode)
	assert.Equal(t, int64(450000), result.Draft.Subtotal)
	assert.False(t, result.Draft.CheckOutProvisional)
	assert.Equal(t, result.Draft.ID, result.Sheet.LastDraftID)

	stored, err := env.requests.Get(context.Background(), result.Draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "eko-deluxe", stored.Suite.ID)

	w = env.do(t, http.MethodDelete, base, "usr_1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodGet, base, "usr_1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_BookingSheetRejectsPastDays(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/v1/booking-sheets", "usr_1", models.BookingSheetCreateRequest{HotelID: "htl_lekki"})
	require.Equal(t, http.StatusCreated, w.Code)
	sheet := decode[booking.SheetView](t, w)

	w = env.do(t, http.MethodPost, "/v1/booking-sheets/"+sheet.ID+"/days", "usr_1", models.DayPressRequest{Date: "2026-02-28"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	problem := decode[models.Problem](t, w)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "DAY_IN_PAST", problem.Errors[0].Code)
}

func TestRouter_BookingSheetProceedBlocked(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	// The royal suite has no published price.
	w := env.do(t, http.MethodPost, "/v1/booking-sheets", "usr_1", models.BookingSheetCreateRequest{
		HotelID: "htl_eko",
		SuiteID: "eko-royal",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	sheet := decode[booking.SheetView](t, w)
	base := "/v1/booking-sheets/" + sheet.ID

	for range 2 {
		w = env.do(t, http.MethodPost, base+"/guests", "usr_1", models.GuestsRequest{Field: "adults", Action: "decrement"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = env.do(t, http.MethodPost, base+"/proceed", "usr_1", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	problem := decode[models.Problem](t, w)
	codes := make([]string, 0, len(problem.Errors))
	for _, e := range problem.Errors {
		codes = append(codes, e.Code)
	}
	assert.ElementsMatch(t, []string{booking.ProblemGuestsInvalid, booking.ProblemPriceUnavailable}, codes)

	w = env.do(t, http.MethodGet, base, "usr_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[booking.SheetView](t, w).LastDraftID)
}

func TestRouter_BookingSheetProceedHandlerFailure(t *testing.T) {
	env := newTestEnv(t, envOptions{
		proceed: booking.ProceedFunc(func(context.Context, booking.Draft) error {
			return errors.New("topic unavailable")
		}),
	})

	w := env.do(t, http.MethodPost, "/v1/booking-sheets", "usr_1", models.BookingSheetCreateRequest{HotelID: "htl_lekki"})
	require.Equal(t, http.StatusCreated, w.Code)
	sheet := decode[booking.SheetView](t, w)

	w = env.do(t, http.MethodPost, "/v1/booking-sheets/"+sheet.ID+"/proceed", "usr_1", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = env.do(t, http.MethodGet, "/v1/booking-sheets/"+sheet.ID, "usr_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[booking.SheetView](t, w).LastDraftID)
}

func TestRouter_BookingSheetValidation(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/v1/booking-sheets", "usr_1", models.BookingSheetCreateRequest{
		HotelID: "htl_eko",
		SuiteID: "lbh-ocean",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "suiteId", decode[models.Problem](t, w).Errors[0].Field)

	w = env.do(t, http.MethodPost, "/v1/booking-sheets", "usr_1", models.BookingSheetCreateRequest{HotelID: "htl_eko"})
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/v1/booking-sheets/" + decode[booking.SheetView](t, w).ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"malformed date", http.MethodPost, "/days", map[string]any{"date": "01/03/2026"}},
		{"unknown guest field", http.MethodPost, "/guests", map[string]any{"field": "pets", "action": "increment"}},
		{"unknown action", http.MethodPost, "/guests", map[string]any{"field": "adults", "action": "double"}},
		{"unknown suite", http.MethodPut, "/suite", map[string]any{"suiteId": "ikg-studio"}},
		{"unknown field", http.MethodPatch, "/extras", map[string]any{"coupon": "X"}},
		{"promo code too long", http.MethodPatch, "/extras", map[string]any{"promoCode": strings.Repeat("A", 100)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, base+tt.path, "usr_1", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestRouter_Favorites(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/v1/favorites", "gst_ada", models.FavoriteToggleRequest{HotelID: "htl_eko"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[models.FavoriteToggle](t, w).IsFavorite)

	w = env.do(t, http.MethodGet, "/v1/favorites", "gst_ada", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[models.FavoriteList](t, w)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "htl_eko", list.Items[0].Hotel.ID)

	w = env.do(t, http.MethodGet, "/v1/favorites", "gst_bola", nil)
	assert.Empty(t, decode[models.FavoriteList](t, w).Items, "favorites belong to the token subject")

	w = env.do(t, http.MethodDelete, "/v1/favorites/htl_eko", "gst_ada", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/v1/favorites", "gst_ada", nil)
	assert.Empty(t, decode[models.FavoriteList](t, w).Items)
}
