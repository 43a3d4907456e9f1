package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"clipforge/internal/jobs"
	"clipforge/internal/pkg/logger"
	"clipforge/internal/queue"
	"clipforge/internal/renderer"
	"clipforge/internal/storage"
	"clipforge/internal/worker"
)

func main() {
	log := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Format:      getEnv("LOG_FORMAT", "json"),
		ServiceName: "clipforge-worker",
		AddSource:   getEnv("LOG_SOURCE", "false") == "true",
	})

	log.Info("starting clipforge worker", "version", "0.1.0")

	dbURL := mustEnv(log, "DATABASE_URL")
	redisAddr := mustEnv(log, "REDIS_ADDR")
	queueName := getEnv("JOB_QUEUE_NAME", "clipforge:renders")
	concurrency := envInt(log, "WORKER_CONCURRENCY", worker.DefaultConcurrency)
	jobTimeout := envDuration(log, "RENDER_JOB_TIMEOUT", 15*time.Minute)
	tempDir := getEnv("RENDER_TEMP_DIR", os.TempDir())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}

	sp, err := storage.NewProvider()
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	runner := renderer.NewCLI(
		renderer.WithTempDir(tempDir),
		renderer.WithLogger(log),
	)

	err = worker.Run(ctx, worker.Deps{
		Store:       jobs.NewPGStore(pool),
		Queue:       queue.NewRedisQueue(rdb, queueName),
		Runner:      runner,
		SP:          sp,
		Concurrency: concurrency,
		JobTimeout:  jobTimeout,
		Log:         log,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.LogFatal("worker stopped with error", err)
	}
}

func getEnv(key, defaultValue string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	return v
}

func mustEnv(log *logger.Logger, key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		log.Error("missing required environment variable", "key", key)
		os.Exit(1)
	}
	return v
}

func envInt(log *logger.Logger, key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Warn("invalid integer env, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return v
}

func envDuration(log *logger.Logger, key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Warn("invalid duration env, using default", "key", key, "value", raw, "default", def.String())
		return def
	}
	return v
}
