// Package api provides the HTTP API for Roomy.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/api/handler"
	"github.com/roomy/roomy/internal/api/middleware"
	"github.com/roomy/roomy/internal/auth"
	"github.com/roomy/roomy/internal/booking"
	"github.com/roomy/roomy/internal/catalog"
	"github.com/roomy/roomy/internal/favorites"
	"github.com/roomy/roomy/internal/navigation"
	"github.com/roomy/roomy/internal/provider/resilience"
	"github.com/roomy/roomy/internal/telemetry"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	RequireTLS  bool

	JWT       *auth.JWTService
	Catalog   catalog.Repository
	Providers *resilience.Registry
	Checks    []handler.ReadinessCheck
	Sessions  *navigation.Registry
	Sheets    *booking.SheetRegistry
	Favorites *favorites.Service

	// Instruments records domain metrics (optional).
	Instruments *telemetry.Instruments

	// CheckOrigin overrides the WebSocket origin check.
	CheckOrigin func(r *http.Request) bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "roomy-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.SecurityHeaders)            // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement
	r.Use(middleware.ContentTypeJSON)            // JSON content type
	r.Use(middleware.RequireJSON)                // Reject non-JSON bodies

	// Interfaces stay nil when no instruments are configured.
	var (
		searches handler.SearchRecorder
		drafts   handler.DraftRecorder
	)
	if cfg.Instruments != nil {
		searches = cfg.Instruments
		drafts = cfg.Instruments
	}

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Providers: cfg.Providers,
		Checks:    cfg.Checks,
	})
	authHandler := handler.NewAuthHandler(cfg.JWT, cfg.Logger)
	hotelHandler := handler.NewHotelHandler(cfg.Catalog, cfg.Logger)
	mapHandler := handler.NewMapSessionHandler(handler.MapSessionConfig{
		Sessions:    cfg.Sessions,
		Catalog:     cfg.Catalog,
		Searches:    searches,
		CheckOrigin: cfg.CheckOrigin,
		Logger:      cfg.Logger,
	})
	sheetHandler := handler.NewBookingSheetHandler(handler.BookingSheetConfig{
		Sheets:  cfg.Sheets,
		Catalog: cfg.Catalog,
		Drafts:  drafts,
		Logger:  cfg.Logger,
	})

	favoriteHandler := handler.NewFavoriteHandler(cfg.Favorites, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.JWT)

	tokenRateLimit := middleware.RateLimitByIP(middleware.TokenRateLimit)
	userRateLimit := middleware.RateLimitByUser(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(tokenRateLimit)
			r.Post("/guest", authHandler.IssueGuestToken)
			r.With(authMiddleware).Post("/refresh", authHandler.RefreshToken)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Catalog endpoints (public)
		r.Route("/hotels", func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(middleware.StandardRateLimit))
			r.Get("/", hotelHandler.ListHotels)
			r.Route("/{hotelId}", func(r chi.Router) {
				r.Get("/", hotelHandler.GetHotel)
				r.Get("/directions", hotelHandler.GetDirections)
			})
		})

		// Map sessions (authenticated)
		r.Route("/map-sessions", func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(userRateLimit).Post("/", mapHandler.CreateSession)
			r.Route("/{sessionId}", func(r chi.Router) {
				r.With(userRateLimit).Get("/", mapHandler.GetSession)
				r.With(userRateLimit).Delete("/", mapHandler.DeleteSession)
				r.With(userRateLimit).Post("/events", mapHandler.PostEvent)
				r.With(middleware.RateLimitByUser(middleware.LocationRateLimit)).Post("/location", mapHandler.PushLocation)
				r.With(middleware.RateLimitByUser(middleware.SearchRateLimit)).Post("/search", mapHandler.Search)
				r.Get("/stream", mapHandler.Stream)
			})
		})

		// Favorites (authenticated)
		r.Route("/favorites", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(userRateLimit)
			r.Get("/", favoriteHandler.ListFavorites)
			r.Post("/", favoriteHandler.ToggleFavorite)
			r.Delete("/{hotelId}", favoriteHandler.RemoveFavorite)
		})

		// Booking sheets (authenticated)
		r.Route("/booking-sheets", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(userRateLimit)
			r.Post("/", sheetHandler.CreateSheet)
			r.Route("/{sheetId}", func(r chi.Router) {
				r.Get("/", sheetHandler.GetSheet)
				r.Delete("/", sheetHandler.DeleteSheet)
				r.Put("/suite", sheetHandler.SelectSuite)
				r.Post("/days", sheetHandler.PressDay)
				r.Post("/guests", sheetHandler.AdjustGuests)
				r.Patch("/extras", sheetHandler.SetExtras)
				r.Post("/proceed", sheetHandler.Proceed)
			})
		})
	})

	return r
}
