package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mero-vet/vet-clinic-app-sub000/config"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/catalog"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/email"
	appointmentHandler "github.com/mero-vet/vet-clinic-app-sub000/internal/handler/appointment"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/handler/health"
	promHandler "github.com/mero-vet/vet-clinic-app-sub000/internal/handler/prometheus"
	providerHandler "github.com/mero-vet/vet-clinic-app-sub000/internal/handler/provider"
	waitlistHandler "github.com/mero-vet/vet-clinic-app-sub000/internal/handler/waitlist"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/middleware"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/registry"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/repository"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/repository/memory"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/repository/postgres"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/router"
	appointmentService "github.com/mero-vet/vet-clinic-app-sub000/internal/service/appointment"
	auditService "github.com/mero-vet/vet-clinic-app-sub000/internal/service/audit"
	eventService "github.com/mero-vet/vet-clinic-app-sub000/internal/service/event"
	notificationService "github.com/mero-vet/vet-clinic-app-sub000/internal/service/notification"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/reminder"
	waitlistService "github.com/mero-vet/vet-clinic-app-sub000/internal/service/waitlist"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/logger"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/messaging"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/messaging/redis"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/metrics"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{Level: logger.ParseLevel(cfg.Logging.Level)})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal(err, "api exited with error")
	}
	log.Info("server exited properly")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return err
	}

	// Static clinic configuration
	cat, err := catalog.FromConfig(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	reg, err := registry.FromConfig(cat, cfg.Resources)
	if err != nil {
		return fmt.Errorf("invalid resources: %w", err)
	}

	m := metrics.NewMetrics("vetsched", "")

	auditLog, err := auditService.NewLogger(cfg.Logging.AuditFile)
	if err != nil {
		return fmt.Errorf("failed to build audit logger: %w", err)
	}
	defer func() { _ = auditLog.Sync() }()
	auditor := auditService.NewService(auditLog)

	// Outbox: Postgres when configured, otherwise in-process
	var (
		db         *sqlx.DB
		outboxRepo repository.OutboxRepository
	)
	if cfg.Database.Enabled {
		db, err = postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		outboxRepo = postgres.NewOutboxRepository(postgres.NewBaseRepository(db))
	} else {
		outboxRepo = memory.NewOutboxRepository()
	}
	events := eventService.NewService(outboxRepo)

	healthH := health.NewHandler(db)

	// Broker the relay publishes to
	var broker messaging.Broker
	if cfg.Redis.Enabled {
		zl := log.Zerolog()
		rb, err := redis.NewRedisBroker(ctx, cfg.Redis.ToBrokerConfig(), zl)
		if err != nil {
			return err
		}
		if p, ok := rb.(health.Pinger); ok {
			healthH.AddCheck("redis", p)
		}
		broker = rb
	} else {
		broker = messaging.NewLogBroker(log)
	}
	defer broker.Close()

	// Email is optional; a nil service leaves email confirmations pending
	var mailer email.Service
	if cfg.SMTP.Enabled {
		smtp, err := email.NewSMTPService(cfg.SMTP)
		if err != nil {
			return err
		}
		mailer = smtp
	}
	notifier := notificationService.NewService(memory.NewNotificationRepository(), mailer, cat, loc, log)

	waitlist := waitlistService.NewManager(cat,
		waitlistService.WithEvents(events),
		waitlistService.WithAuditor(auditor),
		waitlistService.WithMetrics(m),
		waitlistService.WithLogger(log),
	)

	scheduler := appointmentService.NewService(memory.NewAppointmentStore(), cat, reg,
		appointmentService.WithWaitlist(waitlist),
		appointmentService.WithReminders(reminder.NewScheduler(cat)),
		appointmentService.WithEvents(events),
		appointmentService.WithAuditor(auditor),
		appointmentService.WithNotifier(notifier),
		appointmentService.WithMetrics(m),
		appointmentService.WithLogger(log),
		appointmentService.WithLocation(loc),
		appointmentService.WithSlotGranularity(cfg.Scheduling.SlotGranularity),
		appointmentService.WithSlotCacheTTL(cfg.Scheduling.SlotCacheTTL),
	)

	// Relay outbox events
	workerLog := log.WithFields(map[string]interface{}{"component": "outbox"})
	processor, err := worker.NewOutboxProcessor(outboxRepo, broker, cfg.ToWorkerConfig(), workerLog, m)
	if err != nil {
		return fmt.Errorf("invalid outbox config: %w", err)
	}
	go processor.Start(ctx)
	go worker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.Retention, cfg.Outbox.CleanupEvery, workerLog).Start(ctx)

	// Setup router
	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		cors.AllowOrigins = cfg.Server.CORSOrigins
	}
	r := router.NewRouter(
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        cfg.RateLimit.RequestsPerSecond,
			RateBurst:        cfg.RateLimit.Burst,
			CORSConfig:       cors,
			RequestTimeout:   cfg.Server.RequestTimeout,
			MaxBodyBytes:     cfg.Server.MaxBodyBytes,
		},
		log,
		m,
		healthH,
		promHandler.New(prometheus.DefaultGatherer),
		appointmentHandler.NewHandler(scheduler),
		providerHandler.NewHandler(scheduler),
		waitlistHandler.NewHandler(waitlist),
	)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "port", cfg.Server.Port, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for a signal or a listener failure, then shut down gracefully
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
