// Migration runner using goose (github.com/pressly/goose/v3).
//
// Each storage engine has its own embedded migration set under
// internal/db/migrations. Both run through the same goose provider flow, so
// version tracking lives in goose_db_version for either engine.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/db/migrations"
	"github.com/persistorai/kinship/internal/dbpool"
)

// RunMigrations applies all pending PostgreSQL migrations.
func RunMigrations(ctx context.Context, pool *dbpool.Pool, log *logrus.Logger) error {
	sqlDB := pool.DB()
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.Postgres())
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	return applyMigrations(ctx, provider, log)
}

// RunSQLiteMigrations applies all pending SQLite migrations to an open database.
func RunSQLiteMigrations(ctx context.Context, sqlDB *sql.DB, log *logrus.Logger) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, migrations.SQLite())
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	return applyMigrations(ctx, provider, log)
}

func applyMigrations(ctx context.Context, provider *goose.Provider, log *logrus.Logger) error {
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", r.Source.Version, r.Source.Path, r.Error)
		}

		log.WithFields(logrus.Fields{
			"version":  r.Source.Version,
			"file":     r.Source.Path,
			"duration": r.Duration,
		}).Info("migration applied")
	}

	if len(results) == 0 {
		log.Debug("all migrations already applied")
	}

	return nil
}
