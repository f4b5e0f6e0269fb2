package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"consulta/backend/internal/service/materializer"
	"consulta/backend/internal/store"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []int
	runFn func(ctx context.Context, windowDays int) (materializer.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, windowDays int) (materializer.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, windowDays)
	f.mu.Unlock()
	if f.runFn == nil {
		return materializer.Result{}, nil
	}
	return f.runFn(ctx, windowDays)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	if _, err := New(&fakeRunner{}, slog.Default(), Config{Spec: "not a schedule", TimeZone: "UTC"}); err == nil {
		t.Fatalf("expected schedule parse error")
	}
	if _, err := New(&fakeRunner{}, slog.Default(), Config{TimeZone: "Nowhere/Atlantis"}); err == nil {
		t.Fatalf("expected timezone error")
	}
}

func TestRunNow_UsesConfiguredWindow(t *testing.T) {
	runner := &fakeRunner{
		runFn: func(ctx context.Context, windowDays int) (materializer.Result, error) {
			return materializer.Result{Created: 3, SeriesProcessed: 2}, nil
		},
	}
	s, err := New(runner, slog.Default(), Config{TimeZone: "UTC", WindowDays: 30})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := s.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if res.Created != 3 {
		t.Fatalf("Created = %d, want 3", res.Created)
	}
	if len(runner.calls) != 1 || runner.calls[0] != 30 {
		t.Fatalf("calls = %v, want [30]", runner.calls)
	}
}

func TestRunNow_DefaultWindow(t *testing.T) {
	runner := &fakeRunner{}
	s, err := New(runner, slog.Default(), Config{TimeZone: "UTC"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if runner.calls[0] != DefaultWindowDays {
		t.Fatalf("window = %d, want %d", runner.calls[0], DefaultWindowDays)
	}
}

func TestRunNow_LeaseHeldIsNotAnError(t *testing.T) {
	runner := &fakeRunner{
		runFn: func(ctx context.Context, windowDays int) (materializer.Result, error) {
			return materializer.Result{}, store.ErrLeaseHeld
		},
	}
	s, err := New(runner, slog.Default(), Config{TimeZone: "UTC"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
}

func TestRunNow_PropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	runner := &fakeRunner{
		runFn: func(ctx context.Context, windowDays int) (materializer.Result, error) {
			return materializer.Result{}, boom
		},
	}
	s, err := New(runner, slog.Default(), Config{TimeZone: "UTC"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.RunNow(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
}

func TestStartStop(t *testing.T) {
	s, err := New(&fakeRunner{}, slog.Default(), Config{TimeZone: "UTC"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestStop_WaitsForCancelledRun(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	var finished atomic.Bool
	runner := &fakeRunner{
		runFn: func(ctx context.Context, windowDays int) (materializer.Result, error) {
			once.Do(func() { close(started) })
			<-ctx.Done()
			time.Sleep(50 * time.Millisecond)
			finished.Store(true)
			return materializer.Result{}, ctx.Err()
		},
	}
	s, err := New(runner, slog.Default(), Config{Spec: "@every 1s", TimeZone: "UTC"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start(context.Background())

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatalf("scheduled run never started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Stop(ctx)

	if !finished.Load() {
		t.Fatalf("Stop returned before the cancelled run finished")
	}
}
