// Package bootstrap holds the process wiring shared by the binaries: logger
// construction and database selection.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/uptrace/bun"

	"consulta/backend/internal/config"
	"consulta/backend/internal/store/bunstore"
	"consulta/backend/internal/store/postgres"
	"consulta/backend/internal/store/sqlite"
)

func NewLogger(w io.Writer, service, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLogLevel(level)})).With(
		slog.String("service", service),
	)
}

func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OpenDatabase connects to the configured backend. SQLite databases get their
// schema created on open; Postgres expects migrations/ to have been applied.
func OpenDatabase(ctx context.Context, log *slog.Logger, cfg config.Config) (*bun.DB, error) {
	log.Info("connecting to database", DatabaseLogArgs(cfg.DatabaseDriver, cfg.DatabaseURL)...)

	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.DatabaseURL)
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.DatabaseURL, bunstore.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		})
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
}

// DatabaseLogArgs describes the target database without credentials.
func DatabaseLogArgs(driver, databaseURL string) []any {
	if driver == config.DriverSQLite {
		path := databaseURL
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		return []any{
			slog.String("db_driver", driver),
			slog.String("db_path", strings.TrimPrefix(path, "file:")),
		}
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_driver", driver), slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_driver", driver),
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
