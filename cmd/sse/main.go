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
	"github.com/zatekoja/courtside/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/courtside/internal/infrastructure/clients/redis"
	"github.com/zatekoja/courtside/internal/infrastructure/observability"
	"github.com/zatekoja/courtside/pkg/config"
)

// Standalone timeline stream server. Unlike the API it requires Redis.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.App.ServiceName+"-sse", cfg.App.Env)
	log.Info().Msg("Starting SSE server")

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Redis client")
	}
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)

	// Timelines are read-only here, so the service gets no publisher.
	intentService := services.NewIntentService(
		database.NewPlaceAdapter(pgClient),
		database.NewPlayIntentAdapter(pgClient),
		database.NewInteractionAdapter(pgClient),
		nil, cfg.Engine, metrics,
	)
	sseHandler := handlers.NewSSEHandler(eventBus, intentService, cfg.Engine.TimelineRefresh)

	router := routes.NewRouter(routes.Handlers{Stream: sseHandler}, cfg.Server.AllowedOrigins, metrics)
	handler := router.SetupRoutes()

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.HandleFunc("GET /api/stream/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"connected_clients": %d}`, sseHandler.GetClientCount())
	})

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("SSE server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("SSE server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("SSE server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("SSE server stopped")
}
