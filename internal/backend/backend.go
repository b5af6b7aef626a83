// Package backend opens the configured store and builds the editor service
// on top of it. Every command goes through here so they agree on setup.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/liftplan/internal/config"
	"github.com/claude/liftplan/internal/editor"
	"github.com/claude/liftplan/internal/localstore"
	"github.com/claude/liftplan/internal/program"
	"github.com/claude/liftplan/internal/storage"
)

// DevLogin is the user every request is attributed to without Tailscale.
const DevLogin = "local"

// Open connects to the database named by cfg and returns the store with a
// close func. PostgreSQL migrations are applied from migrationsPath first.
func Open(ctx context.Context, cfg config.DatabaseConfig, migrationsPath string, log *slog.Logger) (editor.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		dsn := cfg.DSN()
		if err := storage.RunMigrations(dsn, migrationsPath); err != nil {
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied")

		db, err := storage.New(ctx, dsn, cfg.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database connected", "driver", cfg.Driver, "host", cfg.Host, "name", cfg.Name)
		return db, db.Close, nil

	case config.DriverSQLite:
		s, err := localstore.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database opened", "driver", cfg.Driver, "path", cfg.Path)
		return s, func() { s.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// NewService wires an engine and editor service over store. metrics may be nil.
func NewService(store editor.Store, metrics *program.Metrics, log *slog.Logger) *editor.Service {
	engine := program.New(store, log)
	if metrics != nil {
		engine.SetMetrics(metrics)
	}
	return editor.New(store, engine, log)
}

// DevUser makes sure the dev user exists and returns its ID.
func DevUser(ctx context.Context, store editor.Store) (int, error) {
	id, err := store.GetOrCreateUser(ctx, DevLogin, "Local Dev User")
	if err != nil {
		return 0, fmt.Errorf("creating dev user: %w", err)
	}
	return id, nil
}
