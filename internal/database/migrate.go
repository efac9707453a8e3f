package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// goose keeps its dialect and base FS in package state.
var gooseMu sync.Mutex

// RunMigrations brings the accounts and conversations tables up to date.
func RunMigrations(ctx context.Context, d *DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	switch d.Driver {
	case DriverPostgres:
		db := stdlib.OpenDBFromPool(d.Pool)
		defer db.Close()
		return migrate("postgres", "migrations/postgres", func(dir string) error {
			return goose.UpContext(ctx, db, dir)
		})
	case DriverSQLite:
		return migrate("sqlite3", "migrations/sqlite", func(dir string) error {
			return goose.UpContext(ctx, d.SQL, dir)
		})
	default:
		return fmt.Errorf("no migrations for driver %q", d.Driver)
	}
}

func migrate(dialect, dir string, up func(dir string) error) error {
	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("failed to open migrations %s: %w", dir, err)
	}

	goose.SetBaseFS(sub)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := up("."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
