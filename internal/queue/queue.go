// Package queue carries accepted job ids from the API to the render workers.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Queue hands accepted job ids to the worker fleet. Submitting is
// fire-once: each enqueued id is delivered to exactly one worker.
type Queue interface {
	Enqueue(ctx context.Context, jobID string) error
	// Dequeue blocks up to timeout for the next job id; it returns "" with a
	// nil error when the timeout elapses with an empty queue.
	Dequeue(ctx context.Context, timeout time.Duration) (string, error)
}

// RedisQueue is a Redis list-backed Queue (LPUSH/BRPOP).
type RedisQueue struct {
	rdb  *redis.Client
	name string
}

func NewRedisQueue(rdb *redis.Client, name string) *RedisQueue {
	return &RedisQueue{rdb: rdb, name: name}
}

func (q *RedisQueue) Enqueue(ctx context.Context, jobID string) error {
	return q.rdb.LPush(ctx, q.name, jobID).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	if len(res) < 2 {
		return "", nil
	}
	return res[1], nil
}

var _ Queue = (*RedisQueue)(nil)
