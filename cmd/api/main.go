package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salescrm_backend/internal/analytics"
	analyticshandler "salescrm_backend/internal/analytics/handler"
	"salescrm_backend/internal/auth"
	"salescrm_backend/internal/clients"
	"salescrm_backend/internal/clients/capture"
	"salescrm_backend/internal/email"
	"salescrm_backend/internal/events"
	apphttp "salescrm_backend/internal/http"
	"salescrm_backend/internal/http/router"
	"salescrm_backend/internal/identity"
	"salescrm_backend/internal/scheduler"
	"salescrm_backend/internal/storage"
	"salescrm_backend/platform/config"
	"salescrm_backend/platform/db"
	"salescrm_backend/platform/logger"
	"salescrm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender := email.NewSender(cfg)
	if sender == nil {
		log.Warn("email delivery disabled")
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Optional object storage for raw import archives
	var archive capture.Archiver
	archiver, err := storage.NewImportArchiver(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize import archiver", "error", err)
		panic("failed to initialize import archiver: " + err.Error())
	}
	if archiver != nil {
		archive = archiver
		log.Info("import archiving enabled", "bucket", cfg.GetMinioBucketImportArchives())
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Job queue client for on-demand digest runs. Optional; without Redis
	// the endpoint reports the queue as unavailable.
	var enqueuer analyticshandler.DigestEnqueuer
	queueClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Warn("job queue disabled", "error", err)
	} else {
		enqueuer = queueClient
		defer func() { _ = queueClient.Close() }()
	}

	identityModule := identity.NewModule(pool, val)
	authModule := auth.NewModule(pool, cfg, val, log)
	clientsModule := clients.NewModule(pool, eventBus, val, identityModule.NameProvider(), archive)
	analyticsModule := analytics.NewModule(pool, cfg, identityModule.Repository(), sender, enqueuer, log)

	// Email the previous owner when a stale lead changes hands
	email.NewTransferNotifier(sender, identityModule.Repository(), log).Subscribe(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			identityModule,
			clientsModule,
			analyticsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
