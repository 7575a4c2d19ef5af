// Package sqlite persists loaded dataset info in a local SQLite index so
// unchanged info files are not re-parsed across invocations.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/runmanager/internal/log"
)

// DB owns the connection to the index database.
type DB struct {
	conn *sql.DB
}

// NewDB opens (creating if needed) the index at path and applies pending migrations.
// The parent directory is created with 0700 permissions.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	_, statErr := os.Stat(path)
	existed := statErr == nil

	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	// A single connection serialises writers and keeps PRAGMAs consistent.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connecting to index: %w", err)
	}

	pending, err := pendingMigrations(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if existed && pending > 0 {
		if err := backup(path); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("backing up index before migration: %w", err)
		}
	}

	if err := migrate(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Debug(log.CatDB, "index opened", "path", path, "applied", pending)
	return &DB{conn: conn}, nil
}

// Wrap adopts an already-open connection and applies pending migrations.
func Wrap(conn *sql.DB) (*DB, error) {
	if err := migrate(conn); err != nil {
		return nil, err
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// InfoRepository returns the repository for indexed dataset info.
func (db *DB) InfoRepository() *InfoRepository {
	return newInfoRepository(db.conn)
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	return "file:" + filepath.ToSlash(path) + "?" + q.Encode()
}

func backup(path string) error {
	src, err := os.Open(path) //nolint:gosec // index path comes from configuration
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".bak", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600) //nolint:gosec // derived from index path
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
