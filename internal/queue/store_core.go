package queue

import (
	"context"
	"database/sql"
	"fmt"

	"minutes/internal/config"
	"minutes/internal/storage"
)

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database in the configured data directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.JobsDBPath())
}

// OpenPath opens the job database at an explicit location.
func OpenPath(path string) (*Store, error) {
	db, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return storage.Exec(ctx, s.db, query, args...)
}

// execOne runs a conditional update and maps zero affected rows to ErrJobNotFound.
func (s *Store) execOne(ctx context.Context, operation, query string, args ...any) error {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return storeError(operation, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeError(operation, err)
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}
