package guard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"minutes/internal/config"
	"minutes/internal/logging"
)

// Guard grants scoped permission for work to continue running.
type Guard interface {
	Acquire(ctx context.Context, name string) *Lease
}

// Lease is one guarded scope. Release must be called on every exit path;
// calling it more than once is harmless.
type Lease struct {
	ctx     context.Context
	once    sync.Once
	release func()
}

// Context returns the context guarded work must run under.
func (l *Lease) Context() context.Context {
	return l.ctx
}

// Release ends the scope and frees any resources held by the lease.
func (l *Lease) Release() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		if l.release != nil {
			l.release()
		}
	})
}

// FromConfig returns the guard named by workflow.background_guard.
func FromConfig(cfg *config.Config, logger *slog.Logger) (Guard, error) {
	if cfg == nil {
		return Noop{}, nil
	}
	switch cfg.Workflow.BackgroundGuard {
	case "", config.GuardNone:
		return Noop{}, nil
	case config.GuardGrace:
		if cfg.Workflow.BackgroundGraceSeconds <= 0 {
			return nil, fmt.Errorf("background grace guard needs a positive grace period")
		}
		return NewGrace(time.Duration(cfg.Workflow.BackgroundGraceSeconds)*time.Second, logger), nil
	default:
		return nil, fmt.Errorf("unknown background guard %q", cfg.Workflow.BackgroundGuard)
	}
}

// Noop is the guard for hosts that never suspend work.
type Noop struct{}

// Acquire returns a lease bound directly to ctx.
func (Noop) Acquire(ctx context.Context, _ string) *Lease {
	return &Lease{ctx: ctx}
}

// Grace keeps guarded work running for a fixed period after the caller's
// context is cancelled.
type Grace struct {
	period time.Duration
	logger *slog.Logger
}

// NewGrace returns a guard with the given grace period.
func NewGrace(period time.Duration, logger *slog.Logger) *Grace {
	return &Grace{period: period, logger: logging.NewComponentLogger(logger, "guard")}
}

// Acquire detaches the lease context from ctx's cancellation. Once ctx is
// done the lease context lives for the grace period, then is cancelled.
func (g *Grace) Acquire(ctx context.Context, name string) *Lease {
	leaseCtx, cancel := context.WithCancelCause(context.WithoutCancel(ctx))

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	stop := context.AfterFunc(ctx, func() {
		g.logger.Info("grace period started",
			logging.String("scope", name),
			logging.Duration("grace", g.period),
		)
		mu.Lock()
		defer mu.Unlock()
		timer = time.AfterFunc(g.period, func() {
			g.logger.Warn("grace period expired",
				logging.String("scope", name),
				logging.String(logging.FieldEventType, "grace_expired"),
			)
			cancel(fmt.Errorf("%s: grace period of %s expired: %w", name, g.period, context.Cause(ctx)))
		})
	})

	return &Lease{
		ctx: leaseCtx,
		release: func() {
			stop()
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			cancel(context.Canceled)
		},
	}
}
