package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"minutes/internal/analysis"
	"minutes/internal/logging"
	"minutes/internal/notifications"
	"minutes/internal/queue"
	"minutes/internal/services"
)

// Drain runs one drain cycle: it claims the oldest pending job and carries it
// to a terminal state. It returns immediately when another cycle is running.
// When nothing can be claimed, processing rows left by a failed terminal
// write are re-queued. Only job store failures are returned.
func (m *Manager) Drain(ctx context.Context) error {
	if !m.TryBeginDrain() {
		m.logger.Debug("drain already running",
			logging.String(logging.FieldEventType, "drain_skipped"),
		)
		return nil
	}
	defer m.endDrain()

	job, err := m.store.NextPending(ctx)
	if err != nil {
		return err
	}
	if job == nil {
		return m.releaseOrphans(ctx)
	}
	claimed, err := m.store.Claim(ctx, job.ID)
	if err != nil {
		return err
	}
	if !claimed {
		m.logger.Debug("claim refused",
			logging.String(logging.FieldJobID, job.ID),
		)
		return m.releaseOrphans(ctx)
	}
	job.Status = queue.StatusProcessing
	job.Message = queue.MessagePreparing
	return m.processJob(ctx, job)
}

// releaseOrphans runs when a cycle finds nothing to claim. While this cycle
// holds the draining flag no job of ours is running, so a processing row is
// left over from a terminal write that failed earlier and goes back to pending.
func (m *Manager) releaseOrphans(ctx context.Context) error {
	processing, err := m.store.List(ctx, queue.StatusProcessing)
	if err != nil {
		return err
	}
	if len(processing) == 0 {
		return nil
	}
	n, err := m.store.ResetProcessing(ctx)
	if err != nil {
		return err
	}
	logging.WarnWithContext(m.logger, "re-queued orphaned processing job", "jobs_recovered",
		logging.Int64("count", n),
		logging.String(logging.FieldErrorHint, "a previous job store write failed; check the job database"),
	)
	m.signal()
	return nil
}

func (m *Manager) processJob(ctx context.Context, job *queue.Job) error {
	ctx = services.WithJobID(ctx, job.ID)
	ctx = services.WithSubjectID(ctx, job.SubjectID)
	logger := logging.WithContext(ctx, m.logger).With(logging.String(logging.FieldKind, string(job.Kind)))

	m.setCurrent(job)
	defer m.setCurrent(nil)
	startedAt := time.Now()
	logger.Info("job claimed", logging.String(logging.FieldEventType, "job_claimed"))

	lease := m.guard.Acquire(ctx, "job "+job.ID)
	defer lease.Release()
	workCtx := lease.Context()

	req, err := m.mutator.AnalysisRequest(workCtx, job.SubjectID, job.Kind)
	if err != nil {
		return m.failJob(workCtx, logger, job, "", err)
	}

	recorder := newProgressRecorder(workCtx, m.store, logger, job.ID, m.progressLog)
	result, err := m.analyzer.Analyze(workCtx, req, recorder.record)
	progressErr := recorder.failure()
	if err == nil && result == nil {
		err = services.Wrap(services.ErrAdapter, "workflow", "analyze", "analyzer returned no result", nil)
	}
	if err != nil {
		if workCtx.Err() != nil && ctx.Err() != nil {
			logger.Warn("analysis interrupted by shutdown; job will be re-queued on next start",
				logging.String(logging.FieldEventType, "job_interrupted"),
				logging.Error(err),
			)
			return progressErr
		}
		return errors.Join(progressErr, m.failJob(workCtx, logger, job, req.Title, err))
	}
	return errors.Join(progressErr, m.completeJob(workCtx, logger, job, req.Title, result, startedAt))
}

func (m *Manager) completeJob(ctx context.Context, logger *slog.Logger, job *queue.Job, title string, result *analysis.Result, startedAt time.Time) error {
	m.applyMu.Lock()
	defer m.applyMu.Unlock()

	current, err := m.store.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	if current == nil || current.Status != queue.StatusProcessing {
		logger.Info("job cancelled during analysis; result discarded",
			logging.String(logging.FieldEventType, "result_discarded"),
		)
		return nil
	}

	if err := m.mutator.ApplyResult(ctx, job.ID, job.SubjectID, result); err != nil {
		return m.failJobLocked(ctx, logger, job, title, err)
	}
	if err := m.store.Complete(ctx, job.ID); err != nil {
		return err
	}

	duration := time.Since(startedAt)
	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_completed"),
		logging.Int("tasks", len(result.Tasks)),
		logging.Int("decisions", len(result.Decisions)),
		logging.Duration("duration", duration),
	)
	m.notify(ctx, logger, notifications.EventJobCompleted, notifications.Payload{
		"title":    title,
		"jobID":    job.ID,
		"kind":     string(job.Kind),
		"duration": duration,
	})
	return nil
}

func (m *Manager) failJob(ctx context.Context, logger *slog.Logger, job *queue.Job, title string, cause error) error {
	m.applyMu.Lock()
	defer m.applyMu.Unlock()
	return m.failJobLocked(ctx, logger, job, title, cause)
}

func (m *Manager) failJobLocked(ctx context.Context, logger *slog.Logger, job *queue.Job, title string, cause error) error {
	details := services.Details(cause)
	message := strings.TrimSpace(details.Message)

	if err := m.store.Fail(ctx, job.ID, message); err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			logger.Info("job cancelled during analysis; failure discarded",
				logging.String(logging.FieldEventType, "result_discarded"),
				logging.Error(cause),
			)
			return nil
		}
		return err
	}
	if err := m.mutator.SetProcessed(ctx, job.SubjectID, false); err != nil {
		logging.WarnWithContext(logger, "failed to revert processed flag", "processed_revert_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the records database"),
		)
	}

	hint := details.Hint
	if hint == "" {
		hint = "fix the cause and run minutes queue retry"
	}
	logging.ErrorWithContext(logger, "job failed", "job_errored",
		logging.String("error_kind", details.Kind),
		logging.String(logging.FieldErrorHint, hint),
		logging.Error(cause),
	)
	m.notify(ctx, logger, notifications.EventJobErrored, notifications.Payload{
		"title": title,
		"jobID": job.ID,
		"kind":  string(job.Kind),
		"error": message,
	})
	return nil
}

func (m *Manager) notify(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send notification")
			return
		}
		logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}
