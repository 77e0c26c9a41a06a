package db

import (
	"context"
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies every embedded migration not yet recorded in schema_migrations.
// The migration SQL sticks to types and syntax both PostgreSQL and SQLite accept.
func RunMigrations(ctx context.Context, db *sql.DB, driver string, log *zap.Logger) (int, error) {
	if db == nil {
		return 0, errors.New("database connection not initialized")
	}

	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create migrations table")
	}

	files, err := migrationFiles()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, filename := range files {
		var count int
		err := db.QueryRowContext(ctx, Rebind(driver, "SELECT COUNT(*) FROM schema_migrations WHERE version = $1"), filename).Scan(&count)
		if err != nil {
			return applied, errors.Wrap(err, "failed to check migration status")
		}

		if count > 0 {
			log.Debug("Migration already applied, skipping", zap.String("migration", filename))
			continue
		}

		content, err := migrationsFS.ReadFile(path.Join("migrations", filename))
		if err != nil {
			return applied, errors.Wrapf(err, "failed to read migration %s", filename)
		}

		log.Info("Applying migration", zap.String("migration", filename))
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return applied, errors.Wrapf(err, "failed to apply migration %s", filename)
		}

		if _, err := db.ExecContext(ctx, Rebind(driver, "INSERT INTO schema_migrations (version) VALUES ($1)"), filename); err != nil {
			return applied, errors.Wrapf(err, "failed to record migration %s", filename)
		}
		applied++
	}

	return applied, nil
}

func migrationFiles() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migrations directory")
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
