package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"minutes/internal/config"
	"minutes/internal/logging"
	"minutes/internal/meetings"
	"minutes/internal/notifications"
	"minutes/internal/queue"
	"minutes/internal/workflow"
)

// Daemon owns the workflow manager and the single-instance lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	records  *meetings.Store
	workflow *workflow.Manager
	notifier notifications.Service
	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc

	shutdownOnce sync.Once
	shutdown     func()
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	Workflow      workflow.StatusSummary
	QueueDBPath   string
	RecordsDBPath string
	LockFilePath  string
}

// Option customizes daemon construction.
type Option func(*Daemon)

// WithNotifier sets the notifier used by TestNotification.
func WithNotifier(notifier notifications.Service) Option {
	return func(d *Daemon) {
		if notifier != nil {
			d.notifier = notifier
		}
	}
}

// WithShutdown registers a callback invoked once when a client requests the
// process to exit.
func WithShutdown(fn func()) Option {
	return func(d *Daemon) {
		d.shutdown = fn
	}
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, records *meetings.Store, wf *workflow.Manager, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil || records == nil || wf == nil {
		return nil, errors.New("daemon requires config, stores, and workflow manager")
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		records:  records,
		workflow: wf,
		notifier: notifications.NewService(cfg),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Start acquires the daemon lock, re-queues jobs interrupted by a previous
// run, and launches the workflow manager.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another minutes daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if _, err := d.workflow.Recover(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("recover jobs: %w", err)
	}
	if err := d.workflow.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start workflow: %w", err)
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("minutes daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no daemon is running"),
		)
	}
	d.running.Store(false)
	d.logger.Info("minutes daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// RequestShutdown stops processing and asks the hosting process to exit.
func (d *Daemon) RequestShutdown() {
	d.Stop()
	d.shutdownOnce.Do(func() {
		if d.shutdown != nil {
			d.shutdown()
		}
	})
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Running reports whether the workflow manager is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status returns daemon runtime information.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		Workflow:      d.workflow.Status(ctx),
		QueueDBPath:   d.store.Path(),
		RecordsDBPath: d.records.Path(),
		LockFilePath:  d.lockPath,
	}
}
