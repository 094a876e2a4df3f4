package queue

import (
	"context"
	"strings"
	"time"

	"minutes/internal/storage"
)

// Claim moves a pending job to processing. It refuses, returning false, when
// the job is no longer pending or another job already holds processing.
func (s *Store) Claim(ctx context.Context, id string) (bool, error) {
	timestamp := storage.FormatTime(time.Now())
	res, err := s.exec(ctx,
		`UPDATE jobs
         SET status = ?, progress = 0, message = ?, error = NULL, started_at = ?, updated_at = ?
         WHERE id = ? AND status = ?
           AND NOT EXISTS (SELECT 1 FROM jobs WHERE status = ?)`,
		string(StatusProcessing), MessagePreparing, timestamp, timestamp,
		id, string(StatusPending), string(StatusProcessing),
	)
	if err != nil {
		return false, storeError("claim job", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeError("claim job", err)
	}
	return n == 1, nil
}

// UpdateProgress persists the latest percent and message for a processing job.
// Percent is clamped to 0..100; ordering is last write wins.
func (s *Store) UpdateProgress(ctx context.Context, id string, percent int, message string) error {
	return s.execOne(ctx, "update progress",
		`UPDATE jobs SET progress = ?, message = ?, updated_at = ? WHERE id = ? AND status = ?`,
		clampPercent(percent), strings.TrimSpace(message), storage.FormatTime(time.Now()),
		id, string(StatusProcessing),
	)
}

// Complete marks a processing job completed with progress 100.
func (s *Store) Complete(ctx context.Context, id string) error {
	timestamp := storage.FormatTime(time.Now())
	return s.execOne(ctx, "complete job",
		`UPDATE jobs
         SET status = ?, progress = 100, message = ?, error = NULL, completed_at = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		string(StatusCompleted), MessageCompleted, timestamp, timestamp,
		id, string(StatusProcessing),
	)
}

// Fail marks a processing job errored, keeping its last progress value.
func (s *Store) Fail(ctx context.Context, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "analysis failed"
	}
	timestamp := storage.FormatTime(time.Now())
	return s.execOne(ctx, "fail job",
		`UPDATE jobs
         SET status = ?, message = ?, error = ?, completed_at = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		string(StatusErrored), MessageFailed, reason, timestamp, timestamp,
		id, string(StatusProcessing),
	)
}

// ResetProcessing returns every processing job to pending with progress 0.
// Callers run it only when no job of theirs is processing: at startup, or
// from a drain cycle that found nothing to claim.
func (s *Store) ResetProcessing(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx,
		`UPDATE jobs
         SET status = ?, progress = 0, message = ?, started_at = NULL, updated_at = ?
         WHERE status = ?`,
		string(StatusPending), MessageRequeued, storage.FormatTime(time.Now()), string(StatusProcessing),
	)
	if err != nil {
		return 0, storeError("reset processing", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeError("reset processing", err)
	}
	return n, nil
}
