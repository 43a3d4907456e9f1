// Package handlers implements the clipforge HTTP endpoints.
package handlers

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"clipforge/internal/jobs"
	"clipforge/internal/pkg/logger"
	"clipforge/internal/ports"
	"clipforge/internal/queue"
	"clipforge/internal/templates"
)

type Deps struct {
	Store    jobs.Store
	Queue    queue.Queue
	Registry *templates.Registry
	SP       ports.StorageProvider
	Log      *logger.Logger

	// Pool and RDB are only consulted by the deep health check; handlers go
	// through Store and Queue. Either may be nil in tests.
	Pool *pgxpool.Pool
	RDB  *redis.Client
}

type Handler struct {
	store    jobs.Store
	queue    queue.Queue
	registry *templates.Registry
	sp       ports.StorageProvider
	log      *logger.Logger

	pool *pgxpool.Pool
	rdb  *redis.Client
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	registry := d.Registry
	if registry == nil {
		registry = templates.Default()
	}

	return &Handler{
		store:    d.Store,
		queue:    d.Queue,
		registry: registry,
		sp:       d.SP,
		log:      log.WithComponent("httpapi"),
		pool:     d.Pool,
		rdb:      d.RDB,
	}
}
