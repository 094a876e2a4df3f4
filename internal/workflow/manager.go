package workflow

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"minutes/internal/analysis"
	"minutes/internal/config"
	"minutes/internal/guard"
	"minutes/internal/logging"
	"minutes/internal/notifications"
	"minutes/internal/queue"
)

// Mutator merges analysis results into meeting records.
type Mutator interface {
	AnalysisRequest(ctx context.Context, meetingID string, kind queue.Kind) (analysis.Request, error)
	ApplyResult(ctx context.Context, jobID, meetingID string, result *analysis.Result) error
	SetProcessed(ctx context.Context, meetingID string, processed bool) error
}

// Manager is the queue engine. Construct one per process.
type Manager struct {
	store    *queue.Store
	analyzer analysis.Analyzer
	mutator  Mutator
	guard    guard.Guard
	notifier notifications.Service
	logger   *slog.Logger

	rearmDelay  time.Duration
	errorRetry  time.Duration
	dedup       bool
	progressLog int

	draining atomic.Bool
	wake     chan struct{}

	// applyMu serializes result application with Cancel.
	applyMu sync.Mutex

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
	current *queue.Job
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithNotifier overrides the notification service built from config.
func WithNotifier(notifier notifications.Service) ManagerOption {
	return func(m *Manager) {
		if notifier != nil {
			m.notifier = notifier
		}
	}
}

// WithRearmDelay overrides workflow.rearm_delay_seconds.
func WithRearmDelay(delay time.Duration) ManagerOption {
	return func(m *Manager) {
		if delay > 0 {
			m.rearmDelay = delay
		}
	}
}

// WithErrorRetryInterval overrides workflow.error_retry_interval.
func WithErrorRetryInterval(interval time.Duration) ManagerOption {
	return func(m *Manager) {
		if interval > 0 {
			m.errorRetry = interval
		}
	}
}

// NewManager constructs the queue engine.
func NewManager(cfg *config.Config, store *queue.Store, analyzer analysis.Analyzer, mutator Mutator, g guard.Guard, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if g == nil {
		g = guard.Noop{}
	}
	m := &Manager{
		store:       store,
		analyzer:    analyzer,
		mutator:     mutator,
		guard:       g,
		notifier:    notifications.NewService(cfg),
		logger:      logging.NewComponentLogger(logger, "workflow"),
		rearmDelay:  time.Duration(cfg.Workflow.RearmDelaySeconds) * time.Second,
		errorRetry:  time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		dedup:       cfg.Workflow.DedupEnqueue,
		progressLog: 25,
		wake:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rearmDelay <= 0 {
		m.rearmDelay = 2 * time.Second
	}
	if m.errorRetry <= 0 {
		m.errorRetry = 10 * time.Second
	}
	return m
}

// TryBeginDrain sets the draining flag, reporting false if a cycle already holds it.
func (m *Manager) TryBeginDrain() bool {
	return m.draining.CompareAndSwap(false, true)
}

func (m *Manager) endDrain() {
	m.draining.Store(false)
}

// Draining reports whether a drain cycle is running.
func (m *Manager) Draining() bool {
	return m.draining.Load()
}

// signal wakes the run loop without blocking.
func (m *Manager) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}
