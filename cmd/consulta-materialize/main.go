// Command consulta-materialize performs a single materializer run, for
// deployments that trigger the job from an external scheduler.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"consulta/backend/internal/bootstrap"
	"consulta/backend/internal/config"
	"consulta/backend/internal/service/materializer"
	"consulta/backend/internal/store"
	"consulta/backend/internal/store/bunstore"
)

const serviceName = "consulta-materialize"

func main() {
	os.Exit(run())
}

func run() int {
	log := bootstrap.NewLogger(os.Stdout, serviceName, "info")

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		return 1
	}
	log = bootstrap.NewLogger(os.Stdout, serviceName, cfg.LogLevel)
	slog.SetDefault(log)

	windowDays := flag.Int("window-days", cfg.SchedulerWindowDays, "days ahead to materialize")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.OpenDatabase(ctx, log, cfg)
	if err != nil {
		args := append([]any{slog.Any("err", err)}, bootstrap.DatabaseLogArgs(cfg.DatabaseDriver, cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return 1
	}
	defer func() {
		if err := bunstore.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	mat := materializer.New(
		bunstore.NewConsultationRepo(db),
		bunstore.NewJobLeaseRepo(db),
		log,
		materializer.Config{LeaseTTL: cfg.SchedulerLeaseTTL},
	)

	if _, err := mat.Run(ctx, *windowDays); err != nil {
		if errors.Is(err, store.ErrLeaseHeld) {
			return 0
		}
		log.Error("materializer run failed", slog.Any("err", err))
		return 1
	}
	return 0
}
