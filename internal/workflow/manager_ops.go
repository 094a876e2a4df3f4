package workflow

import (
	"context"
	"errors"
	"fmt"

	"minutes/internal/logging"
	"minutes/internal/queue"
	"minutes/internal/services"
)

// Enqueue adds a pending job for subjectID and wakes the run loop. With
// dedup enabled an existing pending or processing job for the subject is
// returned instead.
func (m *Manager) Enqueue(ctx context.Context, subjectID string, kind queue.Kind) (string, error) {
	if m.dedup {
		existing, err := m.store.ActiveForSubject(ctx, subjectID)
		if err != nil {
			return "", err
		}
		if existing != nil {
			m.logger.Info("subject already queued; returning active job",
				logging.String(logging.FieldEventType, "job_deduplicated"),
				logging.String(logging.FieldJobID, existing.ID),
				logging.String(logging.FieldSubjectID, subjectID),
			)
			m.signal()
			return existing.ID, nil
		}
	}

	job, err := m.store.Enqueue(ctx, subjectID, kind)
	if err != nil {
		return "", err
	}
	m.logger.Info("job enqueued",
		logging.String(logging.FieldEventType, "job_enqueued"),
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldSubjectID, job.SubjectID),
		logging.String(logging.FieldKind, string(job.Kind)),
	)
	m.signal()
	return job.ID, nil
}

// Cancel deletes a pending or processing job and reverts the subject's
// processed flag. An in-flight analysis keeps running; its result is
// discarded when it returns.
func (m *Manager) Cancel(ctx context.Context, jobID string) error {
	m.applyMu.Lock()
	defer m.applyMu.Unlock()

	job, err := m.store.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return services.Wrap(services.ErrNotFound, "workflow", "cancel", fmt.Sprintf("job %s", jobID), nil)
	}
	if job.Status.IsTerminal() {
		return services.Wrap(services.ErrValidation, "workflow", "cancel",
			fmt.Sprintf("job %s is already %s", jobID, job.Status), nil)
	}
	if err := m.store.DeleteActive(ctx, jobID); err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			return services.Wrap(services.ErrNotFound, "workflow", "cancel", fmt.Sprintf("job %s", jobID), err)
		}
		return err
	}
	if err := m.mutator.SetProcessed(ctx, job.SubjectID, false); err != nil {
		return err
	}
	m.logger.Info("job cancelled",
		logging.String(logging.FieldEventType, "job_cancelled"),
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldSubjectID, job.SubjectID),
		logging.String("previous_status", string(job.Status)),
	)
	return nil
}

// Retry enqueues a new job with the subject and kind of an errored job. The
// errored record is left untouched.
func (m *Manager) Retry(ctx context.Context, jobID string) (string, error) {
	job, err := m.store.GetByID(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job == nil {
		return "", services.Wrap(services.ErrNotFound, "workflow", "retry", fmt.Sprintf("job %s", jobID), nil)
	}
	if job.Status != queue.StatusErrored {
		return "", services.Wrap(services.ErrValidation, "workflow", "retry",
			fmt.Sprintf("job %s is %s; only errored jobs can be retried", jobID, job.Status), nil)
	}
	return m.Enqueue(ctx, job.SubjectID, job.Kind)
}

// Recover returns jobs left processing by a previous process to pending. It
// must run before Start.
func (m *Manager) Recover(ctx context.Context) (int, error) {
	if m.Draining() {
		return 0, services.Wrap(services.ErrValidation, "workflow", "recover", "a drain cycle is running", nil)
	}
	n, err := m.store.ResetProcessing(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.logger.Info("re-queued interrupted jobs",
			logging.String(logging.FieldEventType, "jobs_recovered"),
			logging.Int64("count", n),
		)
		m.signal()
	}
	return int(n), nil
}
