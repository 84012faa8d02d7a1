// Package main provides the entrypoint for the Roomy API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/api"
	"github.com/roomy/roomy/internal/api/handler"
	"github.com/roomy/roomy/internal/api/middleware"
	"github.com/roomy/roomy/internal/auth"
	"github.com/roomy/roomy/internal/booking"
	"github.com/roomy/roomy/internal/booking/publisher"
	"github.com/roomy/roomy/internal/catalog"
	"github.com/roomy/roomy/internal/config"
	"github.com/roomy/roomy/internal/database"
	"github.com/roomy/roomy/internal/favorites"
	"github.com/roomy/roomy/internal/geocoding"
	mapboxgeo "github.com/roomy/roomy/internal/geocoding/mapbox"
	orsgeo "github.com/roomy/roomy/internal/geocoding/openrouteservice"
	"github.com/roomy/roomy/internal/navigation"
	"github.com/roomy/roomy/internal/provider/resilience"
	"github.com/roomy/roomy/internal/routing"
	mapboxroute "github.com/roomy/roomy/internal/routing/mapbox"
	orsroute "github.com/roomy/roomy/internal/routing/openrouteservice"
	"github.com/roomy/roomy/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "roomy-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Roomy API")

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}
	instruments, err := telemetry.NewInstruments(telemetry.Meter(serviceName))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize instruments")
	}

	// Catalog and favorites share the backend.
	var (
		repo   catalog.Repository
		favs   favorites.Repository
		checks []handler.ReadinessCheck
	)
	switch cfg.CatalogBackend {
	case config.CatalogPostgres:
		dbConfig := database.ConfigFromEnv(serviceName)
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")

		repo = catalog.NewPostgresRepository(pool)
		favs = favorites.NewPostgresRepository(pool)
		checks = append(checks, handler.ReadinessCheck{Name: "database", Check: database.Ping(pool, dbConfig.PingTimeout)})
	default:
		repo = catalog.NewSeededRepository()
		favs = favorites.NewMemoryRepository()
		log.Warn().Msg("using in-memory demo catalog and favorites")
	}

	jwtSigningKey := cfg.JWTSigningKey
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	jwtService, err := auth.NewJWTService(auth.JWTConfig{SigningKey: jwtSigningKey})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize JWT service")
	}

	// Map providers share one health registry for /v1/ops/status.
	providers := resilience.NewRegistry()
	routes := routing.NewService(routing.ServiceConfig{
		Provider: newRoutingProvider(cfg, providers, log),
		Logger:   log,
		Recorder: instruments,
	})
	geocoder := newGeocodingProvider(cfg, providers, log)
	log.Info().
		Str("routing_provider", routes.ProviderName()).
		Str("geocoding_provider", geocoder.Name()).
		Msg("map providers initialized")

	rules := navigation.DefaultRules()
	rules.DefaultCenter = cfg.DefaultCenter

	sessions := navigation.NewRegistry(navigation.RegistryConfig{
		Routes:      routes,
		Geocoder:    geocoder,
		Rules:       &rules,
		IdleTimeout: cfg.MapSessionIdleTimeout,
		Observer:    instruments,
		Logger:      log,
	})
	defer sessions.Close()
	go sessions.Run(ctx)

	// Booking drafts go to Pub/Sub when a project is configured; otherwise
	// they are logged and dropped.
	var proceed booking.ProceedHandler
	if cfg.PubSubProjectID != "" {
		pub, err := publisher.New(ctx, publisher.Config{
			ProjectID: cfg.PubSubProjectID,
			Topic:     cfg.PubSubBookingTopic,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize booking publisher")
		}
		defer func() {
			if err := pub.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close booking publisher")
			}
		}()
		proceed = pub
		log.Info().
			Str("project", cfg.PubSubProjectID).
			Str("topic", cfg.PubSubBookingTopic).
			Msg("booking publisher initialized")
	}

	sheets := booking.NewSheetRegistry(booking.SheetRegistryConfig{
		Handler:                 proceed,
		RequireExplicitCheckOut: cfg.RequireExplicitCheckOut,
		Location:                cfg.Location(),
		Logger:                  log,
	})
	go sheets.Run(ctx, time.Minute)

	favoriteService := favorites.NewService(favorites.ServiceConfig{
		Repository: favs,
		Catalog:    repo,
		Logger:     log,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		RequireTLS:  cfg.RequireTLS,
		JWT:         jwtService,
		Catalog:     repo,
		Providers:   providers,
		Checks:      checks,
		Sessions:    sessions,
		Sheets:      sheets,
		Favorites:   favoriteService,
		Instruments: instruments,
	})

	// WriteTimeout does not apply to hijacked WebSocket connections; the
	// stream sets its own deadlines.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func newRoutingProvider(cfg config.Config, providers *resilience.Registry, log zerolog.Logger) routing.Provider {
	if cfg.RoutingProvider == config.ProviderOpenRouteService {
		return orsroute.NewClient(orsroute.ClientConfig{
			APIKey:   cfg.ORSAPIKey,
			Registry: providers,
			Logger:   log,
		})
	}
	return mapboxroute.NewClient(mapboxroute.ClientConfig{
		AccessToken: cfg.MapboxAccessToken,
		Registry:    providers,
		Logger:      log,
	})
}

func newGeocodingProvider(cfg config.Config, providers *resilience.Registry, log zerolog.Logger) geocoding.Provider {
	if cfg.GeocodingProvider == config.ProviderOpenRouteService {
		return orsgeo.NewClient(orsgeo.ClientConfig{
			APIKey:   cfg.ORSAPIKey,
			Registry: providers,
			Logger:   log,
		})
	}
	return mapboxgeo.NewClient(mapboxgeo.ClientConfig{
		AccessToken: cfg.MapboxAccessToken,
		Registry:    providers,
		Logger:      log,
	})
}
