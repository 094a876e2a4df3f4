package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"minutes/internal/logging"
	"minutes/internal/queue"
)

// progressRecorder persists each adapter report immediately. A vanished job
// means it was cancelled; other store failures are kept for the caller.
type progressRecorder struct {
	ctx     context.Context
	store   *queue.Store
	logger  *slog.Logger
	jobID   string
	sampler *logging.ProgressSampler

	mu        sync.Mutex
	err       error
	cancelled bool
}

func newProgressRecorder(ctx context.Context, store *queue.Store, logger *slog.Logger, jobID string, bucket int) *progressRecorder {
	return &progressRecorder{
		ctx:     ctx,
		store:   store,
		logger:  logger,
		jobID:   jobID,
		sampler: logging.NewProgressSampler(bucket),
	}
}

func (p *progressRecorder) record(percent int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelled {
		return
	}

	if err := p.store.UpdateProgress(p.ctx, p.jobID, percent, message); err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			p.cancelled = true
			p.logger.Info("job cancelled; ignoring further progress")
			return
		}
		if p.err == nil {
			p.err = err
		}
		logging.WarnWithContext(p.logger, "failed to persist progress", "progress_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the job database"),
		)
		return
	}
	if p.sampler.ShouldLog(percent, message) {
		p.logger.Info("analysis progress",
			logging.Int(logging.FieldProgressPercent, percent),
			logging.String(logging.FieldProgressMessage, message),
		)
	}
}

func (p *progressRecorder) failure() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
