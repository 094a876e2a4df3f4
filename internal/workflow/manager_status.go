package workflow

import (
	"context"

	"minutes/internal/logging"
	"minutes/internal/queue"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running    bool
	Draining   bool
	CurrentJob *queue.Job
	LastError  string
	QueueStats map[queue.Status]int
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{Running: m.running}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	if m.current != nil {
		snapshot := *m.current
		summary.CurrentJob = &snapshot
	}
	m.mu.RUnlock()
	summary.Draining = m.Draining()

	if summary.CurrentJob != nil {
		if live, err := m.store.GetByID(ctx, summary.CurrentJob.ID); err == nil && live != nil {
			summary.CurrentJob = live
		}
	}

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read queue stats", logging.Error(err))
	}
	summary.QueueStats = stats
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setCurrent(job *queue.Job) {
	m.mu.Lock()
	if job != nil {
		snapshot := *job
		m.current = &snapshot
	} else {
		m.current = nil
	}
	m.mu.Unlock()
}
