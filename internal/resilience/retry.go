// Package resilience holds the retry policy shared by the outbound geocoding and POI providers.
package resilience

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// RetryConfig is an exponential backoff policy for provider calls.
type RetryConfig struct {
	// MaxAttempts counts the first try; 1 disables retries.
	MaxAttempts int

	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps any single wait.
	MaxBackoff time.Duration

	// Multiplier scales the wait after each retry.
	Multiplier float64

	// OnRetry is called before each retry sleep with the attempt number and error.
	OnRetry func(attempt int, err error)
}

// ProviderRetryConfig builds the policy used by HTTP providers: up to
// maxRetries retries after the first attempt, the n-th retry waiting
// backoffFactor^(n-1) seconds.
func ProviderRetryConfig(maxRetries int, backoffFactor float64) RetryConfig {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if backoffFactor <= 0 {
		backoffFactor = 2.0
	}
	return RetryConfig{
		MaxAttempts:    maxRetries + 1,
		InitialBackoff: time.Second,
		MaxBackoff:     60 * time.Second,
		Multiplier:     backoffFactor,
	}
}

// FromProviderSettings converts the retry settings of a provider config
// section into a RetryConfig. initialBackoff overrides the 1s base delay
// when positive; tests use it to keep retries fast.
func FromProviderSettings(maxRetries int, backoffFactor float64, initialBackoff time.Duration) RetryConfig {
	cfg := ProviderRetryConfig(maxRetries, backoffFactor)
	if initialBackoff > 0 {
		cfg.InitialBackoff = initialBackoff
	}
	return cfg
}

// DoVal runs fn until it succeeds, returns a permanent error, or attempts
// run out. Only IsTransient errors are retried. Cancelling ctx stops the
// loop and returns the last provider error.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = applyDefaults(cfg)

	var zero T
	var lastErr error
	for attempt := range cfg.MaxAttempts {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsTransient(err) || attempt == cfg.MaxAttempts-1 {
			return zero, lastErr
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err)
		}

		timer := time.NewTimer(backoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

func applyDefaults(cfg RetryConfig) RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 60 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	return cfg
}

// backoff returns InitialBackoff * Multiplier^attempt capped at MaxBackoff.
// attempt is zero-based.
func backoff(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	return time.Duration(min(delay, float64(cfg.MaxBackoff)))
}

// RetryLogger returns an OnRetry callback that logs each retry attempt.
func RetryLogger(provider, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying provider call",
			zap.String("provider", provider),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
