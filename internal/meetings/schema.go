package meetings

import (
	"context"
	_ "embed"

	"minutes/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

var recordsSchema = storage.Schema{Name: "records", DDL: schemaSQL, Version: 2}

// ErrSchemaMismatch indicates records.db was created by a different version.
var ErrSchemaMismatch = storage.ErrSchemaMismatch

func (s *Store) initSchema(ctx context.Context) error {
	return recordsSchema.Ensure(ctx, s.db, s.path)
}
