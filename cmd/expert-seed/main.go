package main

import (
	"context"
	"flag"
	"os"

	"leadchat_backend/internal/experts"
	"leadchat_backend/internal/experts/service"
	"leadchat_backend/internal/scheduler"
	"leadchat_backend/platform/config"
	"leadchat_backend/platform/db"
	"leadchat_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	path := flag.String("file", "experts.yaml", "path to the expert roster YAML file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting expert roster import", "file", *path)

	f, err := os.Open(*path)
	if err != nil {
		log.Error("failed to open roster", "error", err)
		panic("failed to open roster: " + err.Error())
	}
	defer f.Close()

	roster, err := service.ParseRoster(f)
	if err != nil {
		log.Error("failed to parse roster", "error", err)
		panic("failed to parse roster: " + err.Error())
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	// With Redis configured the import also clears the shared workload cache.
	var rdb redis.UniversalClient
	if cfg.GetRedisURL() != "" {
		opt, err := scheduler.RedisOptions(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
		if err != nil {
			log.Error("invalid REDIS_URL", "error", err)
			panic("invalid REDIS_URL: " + err.Error())
		}
		client := redis.NewClient(opt)
		defer func() { _ = client.Close() }()
		rdb = client
	}

	svc := experts.NewService(pool, rdb, cfg, log)

	n, err := svc.Import(ctx, roster)
	if err != nil {
		log.Error("roster import stopped", "imported", n, "error", err)
		panic("roster import failed: " + err.Error())
	}
	log.Info("expert roster imported", "experts", n)
}
