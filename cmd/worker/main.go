// Background worker: drains view events from the Redis queue and runs the
// periodic tally reconciliation against the vote ledger.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/letsettle/letsettle/internal/app/worker"
	"github.com/letsettle/letsettle/internal/domain"
	"github.com/letsettle/letsettle/internal/platform/config"
	"github.com/letsettle/letsettle/internal/platform/health"
	"github.com/letsettle/letsettle/internal/platform/logger"
	"github.com/letsettle/letsettle/internal/platform/migrations"
	postgresstorage "github.com/letsettle/letsettle/internal/platform/storage/postgres"
	redisstorage "github.com/letsettle/letsettle/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	// The worker shares the API's GORM connection settings, migrations and
	// models so the schema never diverges between the binaries.
	db, err := postgresstorage.Open(ctx, cfg.PostgresDSN())
	if err != nil {
		logger.Fatal("postgres connection failed", "err", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to unwrap sql.DB", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			logger.Fatal("auto migration failed", "err", err)
		}
	}

	redisClient, err := redisstorage.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis connection failed", "err", err)
	}
	defer redisClient.Close()

	debateRepo := postgresstorage.NewDebateRepository(db)
	optionRepo := postgresstorage.NewOptionRepository(db)
	voteRepo := postgresstorage.NewVoteRepository(db)
	viewQueue := redisstorage.NewEventQueue(redisClient, cfg.ViewQueueKey)
	viewCounter := redisstorage.NewCounter(redisClient, cfg.ViewCounterKey)
	checker := health.NewChecker(sqlDB, redisClient)

	if cfg.WorkerMetricsAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/readyz", checker.ReadyHandler())
			logger.Info("worker metrics listening", "addr", cfg.WorkerMetricsAddress)
			if err := http.ListenAndServe(cfg.WorkerMetricsAddress, mux); err != nil {
				logger.Error("worker metrics server error", "err", err)
			}
		}()
	}

	reconciler := worker.NewReconciler(debateRepo, optionRepo, voteRepo, logger.L())
	if cfg.ReconcileSeconds > 0 {
		interval := time.Duration(cfg.ReconcileSeconds) * time.Second
		go func() {
			logger.Info("tally reconciler started", "interval", interval)
			if err := reconciler.Run(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("tally reconciler stopped", "err", err)
			}
		}()
	}

	processor := worker.NewViewProcessor(debateRepo, viewCounter)

	logger.Info("worker started, waiting for view events")
	err = viewQueue.ConsumeViews(ctx, func(ctx context.Context, event domain.ViewEvent) error {
		// Events are processed one at a time to keep the queue semantics simple.
		if err := processor.Process(ctx, event); err != nil {
			logger.Error("failed to process view event", "debate", event.DebateID, "err", err)
		}
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Fatal("worker stopped with error", "err", err)
	}

	logger.Info("worker stopped")
}
