package main

import (
	"context"
	"flag"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dkaplan/opportunity-pipeline/internal/api"
	"github.com/dkaplan/opportunity-pipeline/internal/config"
	"github.com/dkaplan/opportunity-pipeline/internal/db"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.WithError(err).Fatal("Migration failed")
	}

	var backend db.Backend = db.NewStore(pool)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("Redis unreachable, serving without cache")
		} else {
			backend = db.NewCache(backend, rdb, cfg.CacheTTL)
			log.WithField("addr", cfg.RedisAddr).Info("Redis cache enabled")
		}
	}

	srv := api.NewServer(backend, []byte(cfg.JWTSecret), cfg.CORSOrigins, log)
	log.WithField("port", cfg.Port).Info("Server starting")
	if err := srv.Start(cfg.Port); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
