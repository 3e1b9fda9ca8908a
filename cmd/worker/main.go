package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"footysync/ingestion/internal/cache"
	"footysync/ingestion/internal/client"
	"footysync/ingestion/internal/config"
	"footysync/ingestion/internal/ratelimit"
	"footysync/ingestion/internal/repository"
	"footysync/ingestion/internal/scheduler"
	"footysync/ingestion/internal/sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting football data sync worker")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	db, err := repository.NewDatabase(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Redis backs both the response cache and the rate limit counters.
	// When it is unreachable the worker degrades to in-process fallbacks
	// rather than refusing to start.
	var responseCache cache.Cache
	var counter ratelimit.Counter

	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - using in-memory cache and counters")
		responseCache = cache.NewMemoryCache()
		counter = ratelimit.NewMemoryCounter()
	} else {
		defer redisCache.Close()
		responseCache = redisCache
		counter = ratelimit.NewRedisCounter(redisCache.Client())
	}

	source, err := client.New(cfg.DataSource, cfg, responseCache, counter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize data source")
	}
	log.Info().Str("source", source.Source()).Msg("Data source initialized")

	svc := sync.NewService(db, source, sync.WithDaysAhead(cfg.SyncDaysAhead))

	go startMetricsServer(cfg.MetricsPort)

	sched := scheduler.NewScheduler(cfg, svc, db)
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	<-ctx.Done()

	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("ENVIRONMENT") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer serves Prometheus metrics and a health endpoint
func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Str("addr", addr).Msg("Metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server stopped")
	}
}
