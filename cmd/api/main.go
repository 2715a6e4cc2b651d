// API entrypoint: loads config, wires dependencies and serves HTTP.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/letsettle/letsettle/internal/app/catalog"
	"github.com/letsettle/letsettle/internal/app/httpapi"
	"github.com/letsettle/letsettle/internal/app/voting"
	"github.com/letsettle/letsettle/internal/domain"
	"github.com/letsettle/letsettle/internal/platform/adminauth"
	"github.com/letsettle/letsettle/internal/platform/clock"
	"github.com/letsettle/letsettle/internal/platform/config"
	"github.com/letsettle/letsettle/internal/platform/health"
	"github.com/letsettle/letsettle/internal/platform/ids"
	"github.com/letsettle/letsettle/internal/platform/logger"
	"github.com/letsettle/letsettle/internal/platform/migrations"
	"github.com/letsettle/letsettle/internal/platform/moderation"
	"github.com/letsettle/letsettle/internal/platform/ratelimit"
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

	// Redis carries the rate limiter and the view-event queue.
	redisClient, err := redisstorage.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis connection failed", "err", err)
	}
	defer redisClient.Close()

	debateRepo := postgresstorage.NewDebateRepository(db)
	optionRepo := postgresstorage.NewOptionRepository(db)
	voteRepo := postgresstorage.NewVoteRepository(db)
	viewQueue := redisstorage.NewEventQueue(redisClient, cfg.ViewQueueKey)
	systemClock := clock.NewSystemClock()
	idGen := ids.NewGenerator()

	var limiter domain.RateLimiter = ratelimit.NewNoop()
	if cfg.RateLimitEnabled {
		window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
		limiter = ratelimit.NewRedisRateLimiter(redisClient, cfg.RateLimitMaxVotes, window, cfg.RateLimitKeyPrefix)
	}

	var moderator domain.Moderator = moderation.NewAutoApprove()
	if cfg.ModerationEnabled {
		moderator = moderation.NewRulesEngine()
	}

	votingSvc := voting.NewService(debateRepo, optionRepo, voteRepo, limiter, systemClock, idGen)
	catalogSvc := catalog.NewService(debateRepo, optionRepo, moderator, viewQueue, systemClock, idGen, logger.L())
	auth := adminauth.New(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminSecret)

	mux := http.NewServeMux()
	checker := health.NewChecker(sqlDB, redisClient)

	api := httpapi.New(votingSvc, catalogSvc, auth, logger.L())
	api.Register(mux)
	mux.HandleFunc("/readyz", checker.ReadyHandler())
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("api listening", "addr", cfg.HTTPAddress)
	if err := http.ListenAndServe(cfg.HTTPAddress, mux); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
