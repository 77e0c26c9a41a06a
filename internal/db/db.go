package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	// DriverPostgres is the pgx stdlib driver name.
	DriverPostgres = "pgx"
	// DriverSQLite is the pure-Go SQLite driver name.
	DriverSQLite = "sqlite"
)

// Connect opens a database handle for driver and verifies it with a ping.
func Connect(ctx context.Context, driver, databaseURL string, log *zap.Logger) (*sql.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, errors.WithHint(
			errors.Newf("unsupported database driver %q", driver),
			"use \"pgx\" for PostgreSQL or \"sqlite\" for a local file",
		)
	}

	db, err := sql.Open(driver, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if driver == DriverSQLite {
		// SQLite serializes writers; one connection also keeps :memory: databases shared.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	log.Info("Database connection established", zap.String("driver", driver))
	return db, nil
}
