package queue

import (
	"context"
	_ "embed"

	"minutes/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

// jobsSchema is bumped whenever schema.sql changes; an older jobs.db must be
// deleted and recreated.
var jobsSchema = storage.Schema{Name: "jobs", DDL: schemaSQL, Version: 1}

// ErrSchemaMismatch indicates jobs.db was created by a different version.
var ErrSchemaMismatch = storage.ErrSchemaMismatch

var jobColumnNames = []string{
	"id", "subject_id", "kind", "status", "progress", "message", "error",
	"created_at", "started_at", "completed_at", "updated_at",
}

func (s *Store) initSchema(ctx context.Context) error {
	return jobsSchema.Ensure(ctx, s.db, s.path)
}
