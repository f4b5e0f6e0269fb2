package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TZ", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr() != "0.0.0.0:50051" {
		t.Fatalf("GRPCAddr = %q", cfg.GRPCAddr())
	}
	if cfg.DatabaseDriver != DriverPostgres {
		t.Fatalf("DatabaseDriver = %q, want %q", cfg.DatabaseDriver, DriverPostgres)
	}
	if cfg.SchedulerCron != "0 1 * * *" || cfg.SchedulerWindowDays != 90 {
		t.Fatalf("scheduler defaults = %q/%d", cfg.SchedulerCron, cfg.SchedulerWindowDays)
	}
	if cfg.SchedulerLeaseTTL != 30*time.Minute {
		t.Fatalf("SchedulerLeaseTTL = %s", cfg.SchedulerLeaseTTL)
	}
	if cfg.CheckVirtualOccurrences {
		t.Fatalf("CheckVirtualOccurrences should default to false")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONSULTA_GRPC_ADDR", "127.0.0.1:6000")
	t.Setenv("CONSULTA_DATABASE_DRIVER", "SQLite")
	t.Setenv("CONSULTA_DATABASE_URL", "file:consulta.db")
	t.Setenv("CONSULTA_SCHEDULER_TIMEZONE", "UTC")
	t.Setenv("CONSULTA_SCHEDULER_WINDOW_DAYS", "14")
	t.Setenv("CONSULTA_BOOKING_CHECK_VIRTUAL_OCCURRENCES", "true")
	t.Setenv("CONSULTA_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCHost != "127.0.0.1" || cfg.GRPCPort != 6000 {
		t.Fatalf("grpc = %s:%d", cfg.GRPCHost, cfg.GRPCPort)
	}
	if cfg.DatabaseDriver != DriverSQLite || cfg.DatabaseURL != "file:consulta.db" {
		t.Fatalf("database = %q %q", cfg.DatabaseDriver, cfg.DatabaseURL)
	}
	if cfg.SchedulerTimeZone != "UTC" || cfg.SchedulerWindowDays != 14 {
		t.Fatalf("scheduler = %q/%d", cfg.SchedulerTimeZone, cfg.SchedulerWindowDays)
	}
	if !cfg.CheckVirtualOccurrences {
		t.Fatalf("CheckVirtualOccurrences = false, want true")
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("ShutdownTimeout = %s", cfg.ShutdownTimeout)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{name: "duration", key: "CONSULTA_SHUTDOWN_TIMEOUT", value: "soon"},
		{name: "driver", key: "CONSULTA_DATABASE_DRIVER", value: "oracle"},
		{name: "window", key: "CONSULTA_SCHEDULER_WINDOW_DAYS", value: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
