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

	"leadchat_backend/internal/conversation"
	"leadchat_backend/internal/events"
	"leadchat_backend/internal/experts"
	apphttp "leadchat_backend/internal/http"
	"leadchat_backend/internal/http/router"
	"leadchat_backend/internal/scheduler"
	"leadchat_backend/migrations"
	"leadchat_backend/platform/config"
	"leadchat_backend/platform/db"
	"leadchat_backend/platform/guard"
	"leadchat_backend/platform/logger"
	"leadchat_backend/platform/metrics"
	"leadchat_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 10 * time.Second
	localSweepEvery   = 15 * time.Minute
	guardKeyPrefix    = "leadchat:guard:"
	quotaKeyPrefix    = "chat:quota:"
	revokedKeyPrefix  = "admin:revoked:"
	readHeaderTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
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

	rdb, closeRedis := initRedis(ctx, cfg, log)
	if closeRedis != nil {
		defer closeRedis()
	}

	// Quotas and admin revocations share Redis when available so limits hold
	// across API replicas; otherwise they are per-process.
	var store guard.Store
	if rdb != nil {
		store = guard.NewRedisStore(rdb, guardKeyPrefix)
	} else {
		store = guard.NewMemoryStore()
	}
	quota := guard.NewQuota(store, quotaKeyPrefix, cfg.GetMessageQuota(), cfg.GetMessageQuotaWindow())
	revocations := guard.NewRevocations(store, revokedKeyPrefix)

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	appMetrics := metrics.New()

	handoffClient, closeScheduler := initHandoffScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	conversationModule, err := conversation.NewModule(pool, eventBus, val, quota, cfg, log)
	if err != nil {
		log.Error("failed to initialize conversation module", "error", err)
		panic("failed to initialize conversation module: " + err.Error())
	}
	conversationModule.Service().SetMetrics(appMetrics)

	expertsModule := experts.NewModule(pool, rdb, eventBus, cfg, log)
	if handoffClient != nil {
		expertsModule.SetHandoffScheduler(handoffClient)
	}

	// Break the conversation <-> experts cycle with setters
	conversationModule.Service().SetExpertDirectory(expertsModule.Service())
	expertsModule.Service().SetSessionReader(conversationModule.Service())

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:      cfg,
		Logger:      log,
		Health:      pool,
		EventBus:    eventBus,
		Metrics:     appMetrics.Handler(),
		Revocations: revocations,
		Modules: []apphttp.Module{
			conversationModule,
			expertsModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Without Redis there is no asynq scheduler; sweep idle sessions in-process.
	if handoffClient == nil {
		sweep := scheduler.NewLocalJob("session sweep", localSweepEvery, func(ctx context.Context) error {
			_, err := conversationModule.Service().AbandonIdle(ctx)
			return err
		}, log)
		g.Go(func() error {
			sweep.Run(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	eventBus.Wait()
}

func initRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (redis.UniversalClient, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; using in-process quotas and no workload cache")
		return nil, nil
	}

	opt, err := scheduler.RedisOptions(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		log.Error("invalid REDIS_URL", "error", err)
		panic("invalid REDIS_URL: " + err.Error())
	}

	client := redis.NewClient(opt)
	if err := withRetry(ctx, log, "redis connection", 5, time.Second, func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	log.Info("redis connection established")

	return client, func() { _ = client.Close() }
}

func initHandoffScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; expert handoffs are recorded in-process")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize handoff scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
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
