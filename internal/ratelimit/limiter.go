// Package ratelimit enforces a minimum interval between outbound calls to one provider.
package ratelimit

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Limiter blocks callers until at least Interval has passed since the previous
// permitted call. The underlying rate.Limiter owns the last-call timestamp
// behind its own mutex, so one Limiter may be shared by concurrent workers.
// Burst is fixed at 1: calls are spaced, never queued up and released together.
type Limiter struct {
	lim      *rate.Limiter
	interval time.Duration
}

// Every returns a Limiter allowing one call per interval. A non-positive
// interval disables limiting.
func Every(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{lim: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{lim: rate.NewLimiter(rate.Every(interval), 1), interval: interval}
}

// PerSecond returns a Limiter with interval 1/rps.
func PerSecond(rps float64) *Limiter {
	if rps <= 0 {
		return Every(0)
	}
	return Every(time.Duration(float64(time.Second) / rps))
}

// PerMinute returns a Limiter with interval 60/rpm seconds.
func PerMinute(rpm float64) *Limiter {
	if rpm <= 0 {
		return Every(0)
	}
	return Every(time.Duration(float64(time.Minute) / rpm))
}

// FromRates picks the stricter of a per-second and a per-minute rate. Zero
// values are ignored; if both are zero the limiter is disabled.
func FromRates(rps, rpm float64) *Limiter {
	var interval time.Duration
	if rps > 0 {
		interval = time.Duration(float64(time.Second) / rps)
	}
	if rpm > 0 {
		if perMin := time.Duration(float64(time.Minute) / rpm); perMin > interval {
			interval = perMin
		}
	}
	return Every(interval)
}

// Wait blocks until the next call is permitted or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.lim.Wait(ctx); err != nil {
		return eris.Wrap(err, "ratelimit: wait")
	}
	return nil
}

// Interval reports the minimum spacing between calls (zero when unlimited).
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
