// Package retry wraps fallible network operations with bounded retry and
// exponential backoff. Operations handed to it must be idempotent.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"syscall"
	"time"
)

// Config defines retry behavior for a single operation.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt, so
	// MaxRetries+1 attempts total. Zero means exactly one attempt.
	MaxRetries int
	// BaseDelay is the backoff before the first retry; it doubles after
	// every further failed attempt. No jitter, no cap.
	BaseDelay time.Duration
}

// DefaultConfig matches the production retry policy.
var DefaultConfig = Config{
	MaxRetries: 3,
	BaseDelay:  2 * time.Second,
}

// statusCoder is implemented by transport errors that carry an upstream
// HTTP status code.
type statusCoder interface {
	HTTPStatusCode() int
}

// StatusCode extracts an upstream HTTP status code from err, if any error
// in its chain carries one.
func StatusCode(err error) (int, bool) {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode(), true
	}
	return 0, false
}

// Retriable reports whether err is a transient failure worth retrying:
// connection timeouts, aborted/reset connections, name-resolution
// failures, refused connections, and upstream 5xx responses. Everything
// else, all 4xx responses included, is terminal.
func Retriable(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := StatusCode(err); ok {
		return code >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED)
}

// Do executes op with bounded retry and pure exponential backoff.
//
// Attempts are numbered 0..MaxRetries. After each failed attempt that is
// retriable and not the last, Do sleeps BaseDelay << attempt before trying
// again. A terminal failure, or exhaustion of all attempts, propagates the
// last error unchanged. Success at any attempt returns immediately.
func Do[T any](ctx context.Context, logger *slog.Logger, cfg Config, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	total := cfg.MaxRetries + 1
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !Retriable(err) {
			return zero, err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		delay := cfg.BaseDelay << attempt
		logger.Warn("operation failed, retrying",
			"attempt", attempt+1,
			"total_attempts", total,
			"error", err.Error(),
			"delay", delay)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
