package worker

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"clipforge/internal/jobs"
	"clipforge/internal/pkg/logger"
	"clipforge/internal/ports"
	"clipforge/internal/queue"
	"clipforge/internal/renderer"
)

type countingRunner struct {
	dir     string
	inUse   atomic.Int32
	maxSeen atomic.Int32
	hold    time.Duration
}

func (r *countingRunner) Render(_ context.Context, jobID, templateID string, _ map[string]any) renderer.Result {
	cur := r.inUse.Add(1)
	defer r.inUse.Add(-1)
	for {
		prev := r.maxSeen.Load()
		if cur <= prev || r.maxSeen.CompareAndSwap(prev, cur) {
			break
		}
	}
	time.Sleep(r.hold)

	path := filepath.Join(r.dir, jobID+"-"+templateID+".mp4")
	if err := os.WriteFile(path, []byte("mp4"), 0o644); err != nil {
		return renderer.Result{ErrorMessage: err.Error()}
	}
	return renderer.Result{OK: true, OutputPath: path}
}

type nullStorage struct{}

func (nullStorage) Provider() string { return "null" }

func (nullStorage) PutObject(_ context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if _, err := io.Copy(io.Discard, in.Reader); err != nil {
		return ports.PutObjectOutput{}, err
	}
	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, URL: "null://" + in.ObjectKey}, nil
}

func (nullStorage) GetObject(context.Context, string) (io.ReadCloser, string, int64, error) {
	return nil, "", 0, os.ErrNotExist
}

func (nullStorage) DeleteObject(context.Context, string) error { return nil }

func TestRunBoundsConcurrencyAndDrainsQueue(t *testing.T) {
	store := jobs.NewMemStore()
	q := queue.NewMemQueue(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const jobCount = 6
	ids := make([]string, 0, jobCount)
	for i := 0; i < jobCount; i++ {
		j := &jobs.Job{
			ID:         jobs.NewID(),
			OwnerID:    "user-1",
			TemplateID: "HelloWorld",
			Status:     jobs.StatusPending,
			CreatedAt:  time.Now().UTC(),
		}
		if err := store.Create(ctx, j); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := store.MarkRendering(ctx, j.ID, 10); err != nil {
			t.Fatalf("MarkRendering: %v", err)
		}
		if err := q.Enqueue(ctx, j.ID); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
		ids = append(ids, j.ID)
	}

	runner := &countingRunner{dir: t.TempDir(), hold: 30 * time.Millisecond}
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Deps{
			Store:       store,
			Queue:       q,
			Runner:      runner,
			SP:          nullStorage{},
			Concurrency: 2,
			Log:         logger.New(logger.Config{Level: "error", Output: io.Discard}),
		})
	}()

	deadline := time.After(5 * time.Second)
	for {
		allDone := true
		for _, id := range ids {
			j, err := store.Get(ctx, id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !j.Status.Terminal() {
				allDone = false
				break
			}
		}
		if allDone {
			break
		}
		select {
		case <-deadline:
			t.Fatal("jobs not drained in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	for _, id := range ids {
		j, _ := store.Get(ctx, id)
		if j.Status != jobs.StatusCompleted {
			t.Errorf("job %s status = %s, want completed (%s)", id, j.Status, j.ErrorMessage)
		}
	}
	if max := runner.maxSeen.Load(); max > 2 {
		t.Errorf("observed %d concurrent renders, pool bound is 2", max)
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
