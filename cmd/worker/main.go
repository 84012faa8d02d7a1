// Package main provides the entrypoint for the Roomy booking worker.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/roomy/roomy/internal/api/handler"
	"github.com/roomy/roomy/internal/api/middleware"
	"github.com/roomy/roomy/internal/api/response"
	"github.com/roomy/roomy/internal/booking"
	"github.com/roomy/roomy/internal/config"
	"github.com/roomy/roomy/internal/database"
	"github.com/roomy/roomy/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "roomy-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Roomy worker")

	cfg := config.FromEnv()
	if cfg.PubSubProjectID == "" {
		log.Fatal().Msg("PUBSUB_PROJECT_ID is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConfig := database.ConfigFromEnv(serviceName)
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	consumer, err := worker.NewBookingConsumer(ctx, worker.ConsumerConfig{
		ProjectID:        cfg.PubSubProjectID,
		SubscriptionName: cfg.PubSubBookingSubscription,
		Store:            booking.NewPostgresRequestStore(pool),
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create booking consumer")
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close pubsub client")
		}
	}()

	// Worker also exposes health endpoints for Cloud Run
	ops := handler.NewOpsHandler(handler.OpsConfig{
		Version:   Version,
		BuildTime: BuildTime,
		Checks: []handler.ReadinessCheck{
			{Name: "database", Check: database.Ping(pool, dbConfig.PingTimeout)},
		},
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.ContentTypeJSON)
	r.Get("/health", ops.HealthCheck)
	r.Get("/ready", ops.ReadinessCheck)
	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, consumer.Stats())
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return consumer.Start(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down worker")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker stopped with error")
		return
	}

	log.Info().Msg("worker stopped")
}
