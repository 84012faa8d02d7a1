// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/roomy/roomy/internal/geo"
)

// Provider names accepted for ROUTING_PROVIDER and GEOCODING_PROVIDER.
const (
	ProviderMapbox           = "mapbox"
	ProviderOpenRouteService = "openrouteservice"
)

// Catalog backends accepted for CATALOG_BACKEND.
const (
	CatalogMemory   = "memory"
	CatalogPostgres = "postgres"
)

// Config is the API configuration.
type Config struct {
	Port        string
	Environment string
	RequireTLS  bool

	OTelEnabled  bool
	OTLPEndpoint string

	JWTSigningKey string

	MapboxAccessToken string
	ORSAPIKey         string
	RoutingProvider   string
	GeocodingProvider string
	DefaultCenter     geo.Coordinate

	CatalogBackend string

	PubSubProjectID           string
	PubSubBookingTopic        string
	PubSubBookingSubscription string

	RequireExplicitCheckOut bool
	BookingTimezone         string

	MapSessionIdleTimeout time.Duration
}

// FromEnv reads the configuration from environment variables, applying defaults.
func FromEnv() Config {
	return Config{
		Port:        getEnvOrDefault("APP_PORT", "8080"),
		Environment: getEnvOrDefault("APP_ENV", "development"),
		RequireTLS:  getBool("REQUIRE_TLS", false),

		OTelEnabled:  getBool("OTEL_ENABLED", false),
		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),

		MapboxAccessToken: os.Getenv("MAPBOX_ACCESS_TOKEN"),
		ORSAPIKey:         os.Getenv("ORS_API_KEY"),
		RoutingProvider:   strings.ToLower(getEnvOrDefault("ROUTING_PROVIDER", ProviderMapbox)),
		GeocodingProvider: strings.ToLower(getEnvOrDefault("GEOCODING_PROVIDER", ProviderMapbox)),
		DefaultCenter: geo.New(
			getFloat("DEFAULT_CENTER_LON", 3.3792),
			getFloat("DEFAULT_CENTER_LAT", 6.5244),
		),

		CatalogBackend: strings.ToLower(getEnvOrDefault("CATALOG_BACKEND", CatalogMemory)),

		PubSubProjectID:           os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubBookingTopic:        getEnvOrDefault("PUBSUB_BOOKING_TOPIC", "booking-drafts"),
		PubSubBookingSubscription: getEnvOrDefault("PUBSUB_BOOKING_SUBSCRIPTION", "booking-drafts-worker"),

		RequireExplicitCheckOut: getBool("REQUIRE_EXPLICIT_CHECKOUT", false),
		BookingTimezone:         getEnvOrDefault("BOOKING_TIMEZONE", "Africa/Lagos"),

		MapSessionIdleTimeout: getDuration("MAP_SESSION_IDLE_TIMEOUT", 30*time.Minute),
	}
}

// Production reports whether the service runs in production.
func (c Config) Production() bool {
	return c.Environment == "production"
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error

	switch c.RoutingProvider {
	case ProviderMapbox:
		if c.MapboxAccessToken == "" {
			errs = append(errs, errors.New("MAPBOX_ACCESS_TOKEN is required for mapbox routing"))
		}
	case ProviderOpenRouteService:
		if c.ORSAPIKey == "" {
			errs = append(errs, errors.New("ORS_API_KEY is required for openrouteservice routing"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ROUTING_PROVIDER %q", c.RoutingProvider))
	}

	switch c.GeocodingProvider {
	case ProviderMapbox:
		if c.MapboxAccessToken == "" {
			errs = append(errs, errors.New("MAPBOX_ACCESS_TOKEN is required for mapbox geocoding"))
		}
	case ProviderOpenRouteService:
		if c.ORSAPIKey == "" {
			errs = append(errs, errors.New("ORS_API_KEY is required for openrouteservice geocoding"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown GEOCODING_PROVIDER %q", c.GeocodingProvider))
	}

	if c.CatalogBackend != CatalogMemory && c.CatalogBackend != CatalogPostgres {
		errs = append(errs, fmt.Errorf("unknown CATALOG_BACKEND %q", c.CatalogBackend))
	}

	if err := c.DefaultCenter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_CENTER: %w", err))
	}

	if _, err := time.LoadLocation(c.BookingTimezone); err != nil {
		errs = append(errs, fmt.Errorf("BOOKING_TIMEZONE: %w", err))
	}

	if c.Production() && c.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required in production"))
	}

	return errors.Join(errs...)
}

// Location returns the booking calendar time zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BookingTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
