package shutdown

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"clipforge/internal/pkg/logger"
)

func testLogger() *logger.Logger {
	var buf bytes.Buffer
	return logger.New(logger.Config{Level: "error", Format: "json", Output: &buf})
}

func TestShutdownRunsHandlers(t *testing.T) {
	m := NewManager(testLogger(), 5*time.Second)

	var ran atomic.Int32
	m.Register("first", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})
	m.Register("second", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	m.Shutdown()

	if ran.Load() != 2 {
		t.Errorf("expected 2 handlers to run, got %d", ran.Load())
	}

	select {
	case <-m.Done():
	default:
		t.Error("expected Done channel to be closed after Shutdown")
	}
}

func TestShutdownHandlerError(t *testing.T) {
	m := NewManager(testLogger(), 5*time.Second)

	m.Register("failing", func(ctx context.Context) error {
		return fmt.Errorf("cleanup exploded")
	})

	// An erroring handler must not block or panic the shutdown.
	m.Shutdown()

	select {
	case <-m.Done():
	default:
		t.Error("expected shutdown to complete despite handler error")
	}
}

func TestShutdownTimeout(t *testing.T) {
	m := NewManager(testLogger(), 50*time.Millisecond)

	m.Register("hanging", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	m.Shutdown()
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Errorf("shutdown should respect timeout, took %s", elapsed)
	}
}

func TestContextCanceledOnShutdown(t *testing.T) {
	m := NewManager(testLogger(), time.Second)
	ctx := m.Context()

	m.Shutdown()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("expected manager context to be canceled after shutdown")
	}
}
