package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/zjrosen/runmanager/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// schemaVersion reads the applied migration version from PRAGMA user_version.
func schemaVersion(conn *sql.DB) (uint, error) {
	var version uint
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func openSource() (source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}
	return src, nil
}

// versionsAfter lists the migration versions newer than current, in order.
func versionsAfter(src source.Driver, current uint) ([]uint, error) {
	var versions []uint
	version, err := src.First()
	for err == nil {
		if version > current {
			versions = append(versions, version)
		}
		version, err = src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}
	return versions, nil
}

func pendingMigrations(conn *sql.DB) (int, error) {
	src, err := openSource()
	if err != nil {
		return 0, err
	}
	defer func() { _ = src.Close() }()

	current, err := schemaVersion(conn)
	if err != nil {
		return 0, err
	}
	versions, err := versionsAfter(src, current)
	if err != nil {
		return 0, err
	}
	return len(versions), nil
}

// migrate applies every pending up migration, each in its own transaction.
func migrate(conn *sql.DB) error {
	src, err := openSource()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	current, err := schemaVersion(conn)
	if err != nil {
		return err
	}
	versions, err := versionsAfter(src, current)
	if err != nil {
		return err
	}

	for _, version := range versions {
		if err := applyUp(conn, src, version); err != nil {
			return err
		}
		log.Info(log.CatDB, "migration applied", "version", version)
	}
	return nil
}

func applyUp(conn *sql.DB, src source.Driver, version uint) error {
	body, identifier, err := src.ReadUp(version)
	if err != nil {
		return fmt.Errorf("reading migration %d: %w", version, err)
	}
	defer func() { _ = body.Close() }()

	stmt, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("reading migration %d: %w", version, err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("starting migration %d: %w", version, err)
	}
	if _, err := tx.Exec(string(stmt)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("applying migration %d (%s): %w", version, identifier, err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("recording migration %d: %w", version, err)
	}
	return tx.Commit()
}
