// Package storage holds the SQLite plumbing shared by the job and meeting
// stores: connection setup with pragmas, busy retry, transactions, and
// timestamp/nullable value helpers.
package storage
