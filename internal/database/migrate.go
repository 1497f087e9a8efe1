package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migrate applies all pending migrations for driver ("sqlite" or "postgres") to the
// database at url.
func Migrate(driver, url string) error {
	source, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("failed to load %s migrations: %w", driver, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(driver, url))
	if err != nil {
		_ = source.Close()
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Info().Str("driver", driver).Uint("version", version).Msg("Database schema is up to date")
	return nil
}

// migrateURL converts a connection string into the scheme golang-migrate expects.
func migrateURL(driver, url string) string {
	switch driver {
	case "sqlite":
		if strings.HasPrefix(url, "sqlite://") {
			return url
		}
		return "sqlite://" + url
	case "postgres":
		if rest, found := strings.CutPrefix(url, "postgres://"); found {
			return "pgx5://" + rest
		}
		if rest, found := strings.CutPrefix(url, "postgresql://"); found {
			return "pgx5://" + rest
		}
	}
	return url
}
