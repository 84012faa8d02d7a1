package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomy/roomy/internal/geo"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"APP_PORT", "APP_ENV", "OTEL_ENABLED", "ROUTING_PROVIDER", "GEOCODING_PROVIDER",
		"DEFAULT_CENTER_LAT", "DEFAULT_CENTER_LON", "CATALOG_BACKEND", "REQUIRE_EXPLICIT_CHECKOUT",
		"MAP_SESSION_IDLE_TIMEOUT", "BOOKING_TIMEZONE", "REQUIRE_TLS",
	} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.OTelEnabled)
	assert.False(t, cfg.RequireTLS)
	assert.Equal(t, ProviderMapbox, cfg.RoutingProvider)
	assert.Equal(t, ProviderMapbox, cfg.GeocodingProvider)
	assert.Equal(t, geo.New(3.3792, 6.5244), cfg.DefaultCenter)
	assert.Equal(t, CatalogMemory, cfg.CatalogBackend)
	assert.False(t, cfg.RequireExplicitCheckOut)
	assert.Equal(t, 30*time.Minute, cfg.MapSessionIdleTimeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ROUTING_PROVIDER", "OpenRouteService")
	t.Setenv("DEFAULT_CENTER_LAT", "9.0765")
	t.Setenv("DEFAULT_CENTER_LON", "7.3986")
	t.Setenv("REQUIRE_EXPLICIT_CHECKOUT", "true")
	t.Setenv("MAP_SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("OTEL_ENABLED", "not-a-bool")
	t.Setenv("REQUIRE_TLS", "true")

	cfg := FromEnv()

	assert.Equal(t, ProviderOpenRouteService, cfg.RoutingProvider)
	assert.Equal(t, geo.New(7.3986, 9.0765), cfg.DefaultCenter)
	assert.True(t, cfg.RequireExplicitCheckOut)
	assert.Equal(t, 5*time.Minute, cfg.MapSessionIdleTimeout)
	assert.False(t, cfg.OTelEnabled)
	assert.True(t, cfg.RequireTLS)
}

func TestValidate(t *testing.T) {
	valid := Config{
		RoutingProvider:   ProviderMapbox,
		GeocodingProvider: ProviderOpenRouteService,
		MapboxAccessToken: "pk.test",
		ORSAPIKey:         "ors-key",
		CatalogBackend:    CatalogMemory,
		DefaultCenter:     geo.New(3.3792, 6.5244),
		BookingTimezone:   "UTC",
	}
	require.NoError(t, valid.Validate())

	broken := valid
	broken.RoutingProvider = "google"
	broken.ORSAPIKey = ""
	broken.CatalogBackend = "mongo"
	broken.Environment = "production"

	err := broken.Validate()
	require.Error(t, err)
	for _, want := range []string{"ROUTING_PROVIDER", "ORS_API_KEY", "CATALOG_BACKEND", "JWT_SIGNING_KEY"} {
		assert.Contains(t, err.Error(), want)
	}
}
