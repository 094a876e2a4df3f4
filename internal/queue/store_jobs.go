package queue

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"minutes/internal/services"
	"minutes/internal/storage"
)

// Enqueue inserts a pending job for subjectID.
func (s *Store) Enqueue(ctx context.Context, subjectID string, kind Kind) (*Job, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, services.Wrap(services.ErrValidation, "queue", "enqueue", "subject id is required", nil)
	}
	if kind == "" {
		kind = KindAudioAnalysis
	}
	now := time.Now().UTC()
	timestamp := storage.FormatTime(now)
	job := &Job{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Kind:      kind,
		Status:    StatusPending,
		Message:   MessageQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.exec(ctx,
		`INSERT INTO jobs (id, subject_id, kind, status, progress, message, created_at, updated_at)
         VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		job.ID, job.SubjectID, string(job.Kind), string(job.Status), job.Message, timestamp, timestamp,
	); err != nil {
		return nil, storeError("enqueue", err)
	}
	return job, nil
}

// GetByID fetches a job by identifier. A missing job returns nil, nil.
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get job", err)
	}
	return job, nil
}

// NextPending returns the oldest pending job, or nil when none is waiting.
func (s *Store) NextPending(ctx context.Context) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY `+jobOrder+` LIMIT 1`,
		string(StatusPending),
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("next pending", err)
	}
	return job, nil
}

// HasPending reports whether any job is waiting to be claimed.
func (s *Store) HasPending(ctx context.Context) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM jobs WHERE status = ?)`, string(StatusPending),
	).Scan(&exists)
	if err != nil {
		return false, storeError("has pending", err)
	}
	return exists == 1, nil
}

// ActiveForSubject returns the oldest pending or processing job for a subject.
func (s *Store) ActiveForSubject(ctx context.Context, subjectID string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE subject_id = ? AND status IN (?, ?) ORDER BY `+jobOrder+` LIMIT 1`,
		subjectID, string(StatusPending), string(StatusProcessing),
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("active for subject", err)
	}
	return job, nil
}

// List returns jobs filtered by status in FIFO order. No statuses means all jobs.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := statusArgs(statuses)
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + storage.Placeholders(len(statuses)) + `)`
	}
	query += ` ORDER BY ` + jobOrder
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("list jobs", err)
	}
	jobs, err := scanJobs(rows)
	if err != nil {
		return nil, storeError("list jobs", err)
	}
	return jobs, nil
}

// ListActive returns pending and processing jobs.
func (s *Store) ListActive(ctx context.Context) ([]*Job, error) {
	return s.List(ctx, StatusPending, StatusProcessing)
}

// ListBySubject returns every job recorded for a subject, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subjectID string) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE subject_id = ? ORDER BY `+jobOrder, subjectID,
	)
	if err != nil {
		return nil, storeError("list by subject", err)
	}
	jobs, err := scanJobs(rows)
	if err != nil {
		return nil, storeError("list by subject", err)
	}
	return jobs, nil
}

// DeleteActive removes a pending or processing job. Terminal jobs are left in
// place and reported as ErrJobNotFound.
func (s *Store) DeleteActive(ctx context.Context, id string) error {
	return s.execOne(ctx, "delete job",
		`DELETE FROM jobs WHERE id = ? AND status IN (?, ?)`,
		id, string(StatusPending), string(StatusProcessing),
	)
}

// ClearFinished deletes completed and errored jobs and returns the count removed.
func (s *Store) ClearFinished(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx,
		`DELETE FROM jobs WHERE status IN (?, ?)`, string(StatusCompleted), string(StatusErrored),
	)
	if err != nil {
		return 0, storeError("clear finished", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeError("clear finished", err)
	}
	return n, nil
}
