// Package queue persists analysis jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages the database connection, schema initialization, stats
// queries, startup recovery of interrupted jobs, and the
// pending → processing → completed/errored transitions the queue engine
// relies on. Jobs are ordered by creation time with insertion order as the
// tiebreaker, so claiming the next pending job is deterministic.
//
// Every transition out of processing is conditional on the row still being in
// processing; a job deleted by a cancel surfaces as ErrJobNotFound rather than
// being recreated. Store failures are tagged with services.ErrStore.
//
// Schema changes bump the version in schema.go; users clear the database to
// adopt the new schema.
package queue
