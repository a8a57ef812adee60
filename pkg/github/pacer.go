package github

import (
	"context"
	"sync"
	"time"
)

// Pacer gates API calls so that a minimum wall-clock interval elapses
// between the starts of successive calls. The driver holds a single shared
// pacer for the whole run; only one mutating call is in flight or about to
// start at a time.
type Pacer interface {
	// Wait blocks until the interval since the previous permit has
	// elapsed, then grants a new permit.
	Wait(ctx context.Context) error
}

// IntervalPacer enforces a fixed minimum interval between permits. The
// zero interval never sleeps, which is what --without-sleeping selects.
type IntervalPacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	// injectable for deterministic tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer enforcing the given minimum interval.
func NewPacer(interval time.Duration) *IntervalPacer {
	return &IntervalPacer{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Wait blocks until the interval since the last permit has elapsed.
func (p *IntervalPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	var wait time.Duration
	if !p.last.IsZero() && p.interval > 0 {
		if elapsed := p.now().Sub(p.last); elapsed < p.interval {
			wait = p.interval - elapsed
		}
	}
	p.mu.Unlock()

	if wait > 0 {
		if err := p.sleep(ctx, wait); err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.last = p.now()
	p.mu.Unlock()
	return nil
}

// sleepContext sleeps for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
