package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// DB holds whichever handle DATABASE_URL selected. Exactly one of Pool and
// SQL is set.
type DB struct {
	Driver Driver
	Pool   *pgxpool.Pool
	SQL    *sql.DB
}

// ParseURL picks the driver for a DATABASE_URL and returns the DSN to hand
// to it. postgres:// and postgresql:// select Postgres; sqlite://path,
// file: URIs and bare paths select SQLite.
func ParseURL(databaseURL string) (Driver, string, error) {
	u := strings.TrimSpace(databaseURL)
	switch {
	case u == "":
		return "", "", fmt.Errorf("database URL is empty")
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return DriverPostgres, u, nil
	case strings.HasPrefix(u, "sqlite://"):
		path := strings.TrimPrefix(u, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite URL has no path")
		}
		return DriverSQLite, path, nil
	case strings.Contains(u, "://"):
		return "", "", fmt.Errorf("unsupported database URL scheme in %q", u[:strings.Index(u, "://")])
	default:
		return DriverSQLite, u, nil
	}
}

func Open(ctx context.Context, databaseURL string) (*DB, error) {
	driver, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	switch driver {
	case DriverPostgres:
		pool, err := NewPostgresPool(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &DB{Driver: driver, Pool: pool}, nil
	default:
		db, err := NewSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &DB{Driver: driver, SQL: db}, nil
	}
}

func (d *DB) Close() {
	if d.Pool != nil {
		d.Pool.Close()
	}
	if d.SQL != nil {
		d.SQL.Close()
	}
}
