// Package settings persists the control settings chosen by a user, so that a
// later session starts with them.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
)

// SpeedKey is the key under which the speed factor is stored.
const SpeedKey = "speed_factor"

// A Store keeps settings in a SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens or creates the settings file at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open settings %s: %w", path, err)
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open settings %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

// Get returns the value stored under key. The boolean is false if nothing is
// stored.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string

	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("read setting %s: %w", key, err)
	}

	return value, true, nil
}

// Set stores value under key, replacing what was there.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}

	return nil
}

// Speed returns the stored speed factor. The boolean is false if no speed
// has been saved.
func (s *Store) Speed(ctx context.Context) (float64, bool, error) {
	value, found, err := s.Get(ctx, SpeedKey)
	if err != nil || !found {
		return 0, false, err
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("read setting %s: %w", SpeedKey, err)
	}

	return f, true, nil
}

// SaveSpeed stores the speed factor.
func (s *Store) SaveSpeed(ctx context.Context, f float64) error {
	return s.Set(ctx, SpeedKey, strconv.FormatFloat(f, 'f', 2, 64))
}

// Close closes the settings file.
func (s *Store) Close() error {
	return s.db.Close()
}
