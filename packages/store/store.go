// Package store is the SQLite-backed persistence layer of the development
// messaging instance: realms, users, channels, subscriptions and messages.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("not found")

// Store wraps the development database
type Store struct {
	db         *sql.DB
	dataSource string
	now        func() time.Time
}

// Open opens (and migrates) the database behind a connection string.
// Supported formats:
// - sqlite://path/to/dev.db
// - sqlite:./dev.db
// - sqlite::memory:
func Open(connectionString string) (*Store, error) {
	dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, dataSource: dsn, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DataSource returns the SQLite file backing the store
func (s *Store) DataSource() string {
	return s.dataSource
}

func parseConnectionString(connStr string) (string, error) {
	connStr = strings.TrimSpace(connStr)

	var dsn string
	switch {
	case strings.HasPrefix(connStr, "sqlite://"):
		dsn = strings.TrimPrefix(connStr, "sqlite://")
	case strings.HasPrefix(connStr, "sqlite:"):
		dsn = strings.TrimPrefix(connStr, "sqlite:")
	default:
		return "", fmt.Errorf("unsupported database connection string: %q (use sqlite://path)", connStr)
	}

	if dsn == "" {
		return "", fmt.Errorf("database path is empty")
	}
	return dsn, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (s *Store) timestamp() int64 {
	return s.now().UnixMilli()
}

const schema = `
CREATE TABLE IF NOT EXISTS realms (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	subdomain  TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	uri        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	realm_id      INTEGER NOT NULL REFERENCES realms(id),
	email         TEXT NOT NULL UNIQUE,
	full_name     TEXT NOT NULL,
	api_key       TEXT NOT NULL,
	is_bot        INTEGER NOT NULL DEFAULT 0,
	bot_owner_id  INTEGER REFERENCES users(id),
	avatar_source TEXT NOT NULL DEFAULT 'G',
	avatar_path   TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS users_api_key ON users(api_key);

CREATE TABLE IF NOT EXISTS channels (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	realm_id   INTEGER NOT NULL REFERENCES realms(id),
	name       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	UNIQUE (realm_id, name)
);

CREATE TABLE IF NOT EXISTS subscriptions (
	channel_id INTEGER NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
	user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	origin     TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (channel_id, user_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id  INTEGER NOT NULL REFERENCES users(id),
	channel_id INTEGER NOT NULL REFERENCES channels(id),
	topic      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL,
	request_id TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS messages_sender ON messages(sender_id, id);
`
