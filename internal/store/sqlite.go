package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	applog "bookkeeping/internal/log"

	_ "modernc.org/sqlite"
)

// SQLite keeps the ledger blob in a single row of a local kv table.
type SQLite struct {
	db     *sql.DB
	key    string
	logger *applog.Logger
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens (creating if needed) the database at dbPath, migrates it
// and binds the store to key.
func NewSQLite(dbPath, key string, logger *applog.Logger) (*SQLite, error) {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = applog.Discard()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time keeps modernc from returning SQLITE_BUSY under
	// the HTTP server.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{
		db:     db,
		key:    key,
		logger: logger.WithComponent(applog.ComponentStorage),
	}, nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Key returns the key this store reads and writes.
func (s *SQLite) Key() string {
	return s.key
}

func (s *SQLite) Read(ctx context.Context) ([]byte, bool) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Reading ledger blob failed, treating as empty",
			applog.FieldStorageKey, s.key,
			applog.FieldError, err)
		return nil, false
	}
	return []byte(value), true
}

func (s *SQLite) Write(ctx context.Context, raw []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.key, string(raw), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	s.logger.DebugContext(ctx, "Ledger blob written",
		applog.FieldStorageKey, s.key,
		"bytes", len(raw))
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, s.key); err != nil {
		return fmt.Errorf("clear %s: %w", s.key, err)
	}
	s.logger.InfoContext(ctx, "Ledger blob cleared", applog.FieldStorageKey, s.key)
	return nil
}
