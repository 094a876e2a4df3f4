package queue

import (
	"database/sql"
	"strings"

	"minutes/internal/storage"
)

var jobColumns = strings.Join(jobColumnNames, ", ")

// jobOrder is the FIFO order: creation time, then insertion order.
const jobOrder = "created_at ASC, rowid ASC"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		job          Job
		kind         string
		status       string
		message      sql.NullString
		errorMessage sql.NullString
		createdRaw   string
		startedRaw   sql.NullString
		completedRaw sql.NullString
		updatedRaw   string
	)
	if err := scanner.Scan(
		&job.ID,
		&job.SubjectID,
		&kind,
		&status,
		&job.Progress,
		&message,
		&errorMessage,
		&createdRaw,
		&startedRaw,
		&completedRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	job.Kind = Kind(kind)
	job.Status = Status(status)
	job.Message = message.String
	job.Error = errorMessage.String
	if created, err := storage.ParseTime(createdRaw); err == nil {
		job.CreatedAt = created
	}
	if updated, err := storage.ParseTime(updatedRaw); err == nil {
		job.UpdatedAt = updated
	}
	job.StartedAt = storage.ParseTimePtr(startedRaw.String)
	job.CompletedAt = storage.ParseTimePtr(completedRaw.String)
	return &job, nil
}

func scanJobs(rows *sql.Rows) ([]*Job, error) {
	defer rows.Close()
	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func statusArgs(statuses []Status) []any {
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = string(status)
	}
	return args
}

func clampPercent(percent int) int {
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 100
	default:
		return percent
	}
}
