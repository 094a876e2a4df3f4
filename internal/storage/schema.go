package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSchemaMismatch indicates a database was created with a different schema
// version than the running binary expects.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Schema is a DDL script that creates a schema_version table alongside its
// own tables.
type Schema struct {
	Name    string
	DDL     string
	Version int
}

// Ensure applies the schema to an empty database, or checks that an existing
// one was created at the same version. path only appears in the error.
func (s Schema) Ensure(ctx context.Context, db *sql.DB, path string) error {
	version, found, err := RecordedVersion(ctx, db)
	if err != nil {
		return err
	}
	if !found {
		return InTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, s.DDL); err != nil {
				return fmt.Errorf("create %s schema: %w", s.Name, err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", s.Version); err != nil {
				return fmt.Errorf("record %s schema version: %w", s.Name, err)
			}
			return nil
		})
	}
	if version != s.Version {
		return fmt.Errorf("%w: %s database has version %d, expected %d (delete %s to recreate it)",
			ErrSchemaMismatch, s.Name, version, s.Version, path)
	}
	return nil
}

// RecordedVersion reads the schema_version row. found is false for a
// database that has never been initialized.
func RecordedVersion(ctx context.Context, db *sql.DB) (version int, found bool, err error) {
	var tables int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tables)
	if err != nil {
		return 0, false, fmt.Errorf("check schema_version table: %w", err)
	}
	if tables == 0 {
		return 0, false, nil
	}
	if err := db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, true, nil
}
