package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mero-vet/vet-clinic-app-sub000/config"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/repository/postgres"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/logger"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/messaging/redis"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/metrics"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/worker"
)

const healthAddr = ":8081"

// setupHealthCheck serves health checks and metrics for the worker.
func setupHealthCheck(log *logger.Logger, ready func(context.Context) error) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := ready(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: healthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Health check server failed")
		}
	}()
	return srv
}

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(&logger.Config{Level: logger.ParseLevel(cfg.Logging.Level), JSON: true})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal(err, "Worker exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if !cfg.Database.Enabled {
		return fmt.Errorf("the worker relays the Postgres outbox; database.enabled must be true")
	}

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	// Initialize Redis broker
	broker, err := redis.NewRedisBroker(ctx, cfg.Redis.ToBrokerConfig(), log.Zerolog())
	if err != nil {
		return fmt.Errorf("failed to create Redis broker: %w", err)
	}
	defer broker.Close()

	// Initialize repositories
	outboxRepo := postgres.NewOutboxRepository(postgres.NewBaseRepository(db))

	// Initialize outbox processor
	processor, err := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		cfg.ToWorkerConfig(),
		log,
		metrics.NewMetrics("vetsched", "worker"),
	)
	if err != nil {
		return err
	}
	cleanup := worker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.Retention, cfg.Outbox.CleanupEvery, log)

	// Setup health check endpoints
	health := setupHealthCheck(log, db.PingContext)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = health.Shutdown(shutdownCtx)
	}()

	go cleanup.Start(ctx)
	processor.Start(ctx)
	log.Info("Worker stopped")
	return nil
}
