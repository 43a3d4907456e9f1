// Package worker runs the render worker fleet: a fixed pool of goroutines
// that claim job ids from the queue and drive each through the processor.
package worker

import (
	"context"
	"sync"
	"time"

	"clipforge/internal/pkg/logger"
	"clipforge/internal/worker/processor"
)

// DefaultConcurrency is the pool size when none is configured.
const DefaultConcurrency = 2

const dequeueWait = 30 * time.Second

// Run blocks until ctx is canceled, processing queued jobs with at most
// Concurrency renders in flight.
func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	n := d.Concurrency
	if n <= 0 {
		n = DefaultConcurrency
	}

	p := processor.New(processor.Deps{
		Store:      d.Store,
		Runner:     d.Runner,
		SP:         d.SP,
		JobTimeout: d.JobTimeout,
		Log:        log,
	})

	log.Info("worker started", "concurrency", n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			runLoop(ctx, d, p, log.With("slot", slot))
		}(i)
	}
	wg.Wait()

	log.Info("worker stopped")
	return ctx.Err()
}

// runLoop is one pool slot: dequeue, process, repeat. Each slot blocks on the
// queue independently; a long render in one slot never starves the others.
func runLoop(ctx context.Context, d Deps, p *processor.Processor, log *logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		popCtx, cancel := context.WithTimeout(ctx, dequeueWait+5*time.Second)
		jobID, err := d.Queue.Dequeue(popCtx, dequeueWait)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("queue dequeue error, retrying", "error", err.Error())
			time.Sleep(1 * time.Second)
			continue
		}

		if jobID == "" {
			continue
		}

		jobCtx := logger.ContextWithJobID(ctx, jobID)
		jobLog := log.WithJobID(jobID)

		jobLog.Info("processing job")
		startTime := time.Now()

		if err := p.ProcessJob(jobCtx, jobID); err != nil {
			jobLog.Error("job failed",
				"error", err.Error(),
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		} else {
			jobLog.Info("job done",
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		}
	}
}
