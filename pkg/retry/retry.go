// Package retry runs operations under exponential backoff with jitter.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// Config describes one backoff profile.
type Config struct {
	// MaxAttempts counts the initial call plus retries.
	MaxAttempts int
	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration
	// Multiplier grows the delay between attempts.
	Multiplier float64
	// RetryableErrors holds lowercase substrings of errors worth retrying.
	// Empty means retry everything.
	RetryableErrors []string
}

// DefaultConfig is the generic profile: five attempts over roughly a minute.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// PostgresConfig retries on the transient connection errors postgres emits
// while starting up or shedding load.
func PostgresConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryableErrors = []string{
		"connection refused",
		"connection reset",
		"connection timed out",
		"server closed the connection",
		"too many connections",
		"database system is starting up",
		"network is unreachable",
		"i/o timeout",
		"dial tcp",
	}
	return cfg
}

// TrackerConfig is the profile for issue-tracker API calls: shorter waits,
// retrying rate limits and upstream 5xx responses.
func TrackerConfig() Config {
	return Config{
		MaxAttempts:  4,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		RetryableErrors: []string{
			"status 429",
			"status 500",
			"status 502",
			"status 503",
			"status 504",
			"connection refused",
			"connection reset",
			"unexpected eof",
			"tls handshake timeout",
			"no such host",
			"network is unreachable",
			"i/o timeout",
		},
	}
}

// Do runs fn under the profile until it succeeds, exhausts its attempts, or
// hits a non-retryable error.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for operations that produce a value.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	if cfg.MaxAttempts <= 0 {
		return zero, fmt.Errorf("MaxAttempts must be greater than 0")
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !cfg.retryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(cfg.backoff(attempt)):
		}
	}
	return zero, lastErr
}

// backoff returns the capped exponential delay for the given attempt,
// with ±10% jitter.
func (c Config) backoff(attempt int) time.Duration {
	d := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt))
	if limit := float64(c.MaxDelay); d > limit {
		d = limit
	}
	//nolint:gosec // jitter has no security requirement
	d += d * 0.1 * (rand.Float64()*2 - 1)
	return time.Duration(d)
}

func (c Config) retryable(err error) bool {
	if err == nil {
		return false
	}
	if len(c.RetryableErrors) == 0 {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range c.RetryableErrors {
		if strings.Contains(msg, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}
