package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"google.golang.org/grpc"

	consultav1 "consulta/backend/internal/api/consultav1"
	"consulta/backend/internal/bootstrap"
	"consulta/backend/internal/config"
	"consulta/backend/internal/scheduler"
	"consulta/backend/internal/service/consultations"
	"consulta/backend/internal/service/materializer"
	"consulta/backend/internal/store/bunstore"
	grpcTransport "consulta/backend/internal/transport/grpc"
)

const serviceName = "consulta-server"

func main() {
	log := bootstrap.NewLogger(os.Stdout, serviceName, "info")
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = bootstrap.NewLogger(os.Stdout, serviceName, cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting", slog.String("grpc_addr", cfg.GRPCAddr()), slog.String("log_level", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.OpenDatabase(ctx, log, cfg)
	if err != nil {
		args := append([]any{slog.Any("err", err)}, bootstrap.DatabaseLogArgs(cfg.DatabaseDriver, cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := bunstore.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	repo := bunstore.NewConsultationRepo(db)
	leases := bunstore.NewJobLeaseRepo(db)
	svc := consultations.NewService(repo, consultations.Config{
		CheckVirtualOccurrences: cfg.CheckVirtualOccurrences,
	})
	mat := materializer.New(repo, leases, log, materializer.Config{LeaseTTL: cfg.SchedulerLeaseTTL})

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched, err = scheduler.New(mat, log, scheduler.Config{
			Spec:       cfg.SchedulerCron,
			TimeZone:   cfg.SchedulerTimeZone,
			WindowDays: cfg.SchedulerWindowDays,
		})
		if err != nil {
			log.Error("scheduler setup failed", slog.Any("err", err))
			os.Exit(1)
		}
		sched.Start(ctx)
	} else {
		log.Info("scheduler disabled")
	}

	grpcServer := grpc.NewServer(
		consultav1.ServerCodec(),
		grpc.UnaryInterceptor(grpcTransport.RequestTimeoutInterceptor(cfg.GRPCRequestTimeout)),
	)
	consultav1.RegisterConsultationsServiceServer(
		grpcServer,
		grpcTransport.NewConsultationsServer(svc, mat, cfg.SchedulerWindowDays, log),
	)

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()

	log.Info("grpc server started", slog.String("grpc_addr", cfg.GRPCAddr()))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, grpcServer, sched, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("grpc server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func shutdown(log *slog.Logger, s *grpc.Server, sched *scheduler.Scheduler, timeout time.Duration) {
	log.Info("shutting down grpc server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if sched != nil {
		sched.Stop(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-ctx.Done():
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}
