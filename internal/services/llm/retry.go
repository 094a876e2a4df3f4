package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// retryPolicy retries rate limits, server errors, timeouts and empty replies
// with doubling delays. Other failures are returned at once.
type retryPolicy struct {
	attempts int
	base     time.Duration
	max      time.Duration
	sleeper  func(time.Duration)
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{attempts: 3, base: time.Second, max: 10 * time.Second}
}

// do runs fn until it succeeds, fails permanently, or attempts run out.
func (p retryPolicy) do(ctx context.Context, op string, fn func() error) error {
	attempts := max(p.attempts, 1)
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		wait, ok := p.waitFor(ctx, err, attempt)
		if !ok || attempt >= attempts {
			break
		}
		if sleepErr := p.sleep(ctx, wait); sleepErr != nil {
			return sleepErr
		}
	}
	if attempts == 1 || !retryable(err) {
		return err
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, err)
}

// waitFor returns how long to wait before the next attempt and whether one
// should be made at all.
func (p retryPolicy) waitFor(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if ctx.Err() != nil || !retryable(err) {
		return 0, false
	}
	var status *statusError
	if errors.As(err, &status) && status.RetryAfter > 0 {
		return p.cap(status.RetryAfter), true
	}
	return p.backoff(attempt), true
}

func retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var empty *emptyReplyError
	if errors.As(err, &empty) {
		return true
	}
	var status *statusError
	if errors.As(err, &status) {
		return status.Code == http.StatusRequestTimeout ||
			status.Code == http.StatusTooManyRequests ||
			status.Code >= http.StatusInternalServerError
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// backoff is base for the first retry and doubles after that.
func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.base <= 0 {
		return 0
	}
	delay := p.base
	for i := 1; i < attempt && (p.max <= 0 || delay < p.max); i++ {
		delay *= 2
	}
	return p.cap(delay)
}

func (p retryPolicy) cap(delay time.Duration) time.Duration {
	switch {
	case delay < 0:
		return 0
	case p.max > 0 && delay > p.max:
		return p.max
	default:
		return delay
	}
}

func (p retryPolicy) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if p.sleeper != nil {
		p.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}
