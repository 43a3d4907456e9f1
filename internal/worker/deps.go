package worker

import (
	"time"

	"clipforge/internal/jobs"
	"clipforge/internal/pkg/logger"
	"clipforge/internal/ports"
	"clipforge/internal/queue"
	"clipforge/internal/renderer"
)

type Deps struct {
	Store  jobs.Store
	Queue  queue.Queue
	Runner renderer.Runner
	SP     ports.StorageProvider

	// Concurrency is the number of jobs rendered at once. Renders are
	// CPU and memory heavy, so the bound is deliberate and small.
	Concurrency int
	// JobTimeout bounds a single render plus upload.
	JobTimeout time.Duration

	Log *logger.Logger
}
