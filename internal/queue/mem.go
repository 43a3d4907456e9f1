package queue

import (
	"context"
	"time"
)

// MemQueue is a channel-backed Queue for tests and single-process setups.
type MemQueue struct {
	ch chan string
}

func NewMemQueue(capacity int) *MemQueue {
	if capacity <= 0 {
		capacity = 64
	}
	return &MemQueue{ch: make(chan string, capacity)}
}

func (q *MemQueue) Enqueue(ctx context.Context, jobID string) error {
	select {
	case q.ch <- jobID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemQueue) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case jobID := <-q.ch:
		return jobID, nil
	case <-timer.C:
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

var _ Queue = (*MemQueue)(nil)
