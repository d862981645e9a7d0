package kvstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/repforge/repforge/internal/config"
)

// Open connects the backend named by cfg.Driver. PostgreSQL is migrated
// before use. The returned func releases the backend.
func Open(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (Store, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("sqlite store opened", "path", cfg.SQLitePath)
		return s, func() {
			if err := s.Close(); err != nil {
				log.Warn("closing sqlite store", "error", err)
			}
		}, nil

	case config.DriverPostgres:
		dsn := cfg.Postgres.DSN()
		if err := RunMigrations(dsn, cfg.Migrations); err != nil {
			return nil, nil, err
		}
		log.Info("migrations applied")
		p, err := NewPostgres(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database connected", "host", cfg.Postgres.Host, "name", cfg.Postgres.Name)
		return p, p.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
