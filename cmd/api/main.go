package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/courtside/internal/adapters/database"
	"github.com/zatekoja/courtside/internal/adapters/events"
	"github.com/zatekoja/courtside/internal/api/handlers"
	"github.com/zatekoja/courtside/internal/api/routes"
	"github.com/zatekoja/courtside/internal/application/services"
	"github.com/zatekoja/courtside/internal/domain/providers"
	"github.com/zatekoja/courtside/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/courtside/internal/infrastructure/clients/redis"
	"github.com/zatekoja/courtside/internal/infrastructure/observability"
	"github.com/zatekoja/courtside/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.App.ServiceName, cfg.App.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Redis only carries timeline notifications; the engine runs without it.
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, event bus disabled")
	} else {
		defer redisClient.Close()
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("Event bus initialized")
	}
	publisher := events.NewPlacePublisher(eventBus)

	placeAdapter := database.NewPlaceAdapter(pgClient)
	interactionAdapter := database.NewInteractionAdapter(pgClient)
	proposalAdapter := database.NewEditProposalAdapter(pgClient)
	reviewAdapter := database.NewReviewAdapter(pgClient)
	intentAdapter := database.NewPlayIntentAdapter(pgClient)

	weightService := services.NewWeightService(interactionAdapter, metrics)
	interactionService := services.NewInteractionService(placeAdapter, interactionAdapter)
	moderationService := services.NewModerationService(
		placeAdapter, proposalAdapter, interactionAdapter,
		weightService, publisher, cfg.Engine, metrics,
	)
	reviewService := services.NewReviewService(placeAdapter, reviewAdapter, interactionAdapter, weightService)
	intentService := services.NewIntentService(
		placeAdapter, intentAdapter, interactionAdapter,
		publisher, cfg.Engine, metrics,
	)

	router := routes.NewRouter(routes.Handlers{
		Interactions: handlers.NewInteractionHandler(interactionService, weightService),
		Moderation:   handlers.NewModerationHandler(moderationService),
		Reviews:      handlers.NewReviewHandler(reviewService),
		Intents:      handlers.NewIntentHandler(intentService),
		Stream:       handlers.NewSSEHandler(eventBus, intentService, cfg.Engine.TimelineRefresh),
	}, cfg.Server.AllowedOrigins, metrics)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		// The timeline stream holds its response open.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Trusted services (booking, media) record verified interactions here.
	internalAddr := fmt.Sprintf("%s:%d", cfg.Server.InternalHost, cfg.Server.InternalPort)
	internalServer := &http.Server{
		Addr:         internalAddr,
		Handler:      router.SetupInternalRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	go func() {
		log.Info().Str("addr", internalAddr).Msg("Internal server starting")
		if err := internalServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Internal server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}
	if err := internalServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during internal server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}

	log.Info().Msg("Server stopped")
}
