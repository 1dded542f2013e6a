// Package database stores follow, subscribe and bits events in SQLite.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

var gooseOnce sync.Once

// Config configures the event store.
type Config struct {
	DatabasePath string
	// BusyRetries bounds write retries on SQLITE_BUSY. Zero uses the default.
	BusyRetries uint
}

// DB owns the connection and the repositories.
type DB struct {
	conn       *sql.DB
	Repository *EventRepository
	Bits       *BitRepository
}

// NewDB opens (creating if needed) the database at cfg.DatabasePath and
// applies pending migrations.
func NewDB(cfg Config) (*DB, error) {
	if cfg.DatabasePath == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := cfg.DatabasePath + "?_busy_timeout=5000&_journal_mode=WAL"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}

	retries := cfg.BusyRetries
	if retries == 0 {
		retries = 5
	}

	return &DB{
		conn:       conn,
		Repository: newEventRepository(conn, retries),
		Bits:       &BitRepository{db: conn, retries: retries},
	}, nil
}

func migrate(conn *sql.DB) error {
	var setupErr error
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrations)
		goose.SetLogger(goose.NopLogger())
		setupErr = goose.SetDialect("sqlite3")
	})
	if setupErr != nil {
		return fmt.Errorf("set migration dialect: %w", setupErr)
	}

	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, err := goose.GetDBVersion(conn)
	if err == nil {
		log.Printf("[database] schema at version %d", version)
	}
	return nil
}

// Connection exposes the underlying handle.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}

// isBusy reports whether err is a transient lock error worth retrying.
func isBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

func withBusyRetry(attempts uint, fn func() error) error {
	return retry.Do(
		fn,
		retry.Attempts(attempts),
		retry.Delay(20*time.Millisecond),
		retry.MaxDelay(500*time.Millisecond),
		retry.RetryIf(isBusy),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[database] database busy, retry %d: %v", n+1, err)
		}),
	)
}
