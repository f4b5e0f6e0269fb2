package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"consulta/backend/internal/service/materializer"
	"consulta/backend/internal/store"
)

const (
	DefaultSpec       = "0 1 * * *"
	DefaultTimeZone   = "America/Mexico_City"
	DefaultWindowDays = 90

	// cancelGrace bounds the wait for a cancelled run to return during Stop.
	cancelGrace = 5 * time.Second
)

type materializeRunner interface {
	Run(ctx context.Context, windowDays int) (materializer.Result, error)
}

type Config struct {
	// Spec is a standard five-field cron expression evaluated in TimeZone.
	Spec       string
	TimeZone   string
	WindowDays int
}

// Scheduler triggers the materializer on a cron schedule.
type Scheduler struct {
	runner materializeRunner
	log    *slog.Logger
	cron   *cron.Cron
	window int

	cancelGrace time.Duration

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func New(runner materializeRunner, log *slog.Logger, cfg Config) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Spec == "" {
		cfg.Spec = DefaultSpec
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = DefaultTimeZone
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultWindowDays
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone %q: %w", cfg.TimeZone, err)
	}

	log = log.With(slog.String("component", "scheduler"))
	cl := cronLogger{log: log}
	s := &Scheduler{
		runner: runner,
		log:    log,
		window: cfg.WindowDays,

		cancelGrace: cancelGrace,
		ctx:         context.Background(),
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}

	if _, err := s.cron.AddFunc(cfg.Spec, s.tick); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", cfg.Spec, err)
	}
	log.Info(
		"materializer scheduled",
		slog.String("spec", cfg.Spec),
		slog.String("timezone", loc.String()),
		slog.Int("window_days", cfg.WindowDays),
	)
	return s, nil
}

// Start begins firing in the background. Runs receive a context derived from
// ctx that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.cron.Start()
}

// Stop prevents new runs and waits for a running one until ctx is done. It then
// cancels the run and waits up to cancelGrace for it to return, so callers can
// close the database afterwards.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	stopped := false
	select {
	case <-done.Done():
		stopped = true
	case <-ctx.Done():
		s.log.Warn("materializer run still active at shutdown; cancelling")
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	if stopped {
		return
	}
	grace := time.NewTimer(s.cancelGrace)
	defer grace.Stop()
	select {
	case <-done.Done():
	case <-grace.C:
		s.log.Error("materializer run did not return after cancellation", slog.Duration("grace", s.cancelGrace))
	}
}

// RunNow performs one materializer run and logs its outcome.
func (s *Scheduler) RunNow(ctx context.Context) (materializer.Result, error) {
	started := time.Now()
	res, err := s.runner.Run(ctx, s.window)
	if err != nil {
		if errors.Is(err, store.ErrLeaseHeld) {
			s.log.Info("scheduled run skipped", slog.String("reason", "lease_held"))
			return res, nil
		}
		s.log.Error("scheduled run failed", slog.Any("err", err))
		return res, err
	}
	s.log.Info(
		"scheduled run finished",
		slog.Int("created", res.Created),
		slog.Int("series_processed", res.SeriesProcessed),
		slog.Int("series_failed", res.SeriesFailed),
		slog.Duration("elapsed", time.Since(started)),
	)
	return res, nil
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	_, _ = s.RunNow(ctx)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{slog.Any("err", err)}, keysAndValues...)...)
}
