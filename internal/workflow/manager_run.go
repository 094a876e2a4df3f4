package workflow

import (
	"context"
	"errors"
	"time"

	"minutes/internal/logging"
)

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if m.store == nil || m.analyzer == nil || m.mutator == nil {
		m.mu.Unlock()
		return errors.New("workflow dependencies not configured")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	m.signal()
	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for the current cycle to
// return. A job still processing when its lease ends stays processing and
// is recovered on the next start.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.wake:
		}

		for {
			if err := m.Drain(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				m.handleDrainError(ctx, err)
				continue
			}
			if ctx.Err() != nil {
				return
			}
			pending, err := m.store.HasPending(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				m.handleDrainError(ctx, err)
				continue
			}
			if !pending {
				break
			}
			if !m.sleep(ctx, m.rearmDelay) {
				return
			}
		}
	}
}

func (m *Manager) handleDrainError(ctx context.Context, err error) {
	m.setLastError(err)
	logging.ErrorWithContext(m.logger, "drain cycle failed", "drain_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the job database file and permissions"),
		logging.Duration("retry_in", m.errorRetry),
	)
	m.sleep(ctx, m.errorRetry)
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
