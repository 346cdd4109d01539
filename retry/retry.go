package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Policy is an explicit retry policy: a bounded number of attempts with
// exponential backoff plus jitter between them.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// sleep is overridable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Default is the policy used when a zero Policy is supplied.
var Default = Policy{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: 30 * time.Second}

// WithSleep returns a copy of p using fn instead of a real timer.
func (p Policy) WithSleep(fn func(ctx context.Context, d time.Duration) error) Policy {
	p.sleep = fn
	return p
}

// Do runs op until it succeeds, the attempt budget is spent, or ctx is
// done. The returned error wraps the last attempt's error.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = Default.MaxAttempts
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		if serr := p.wait(ctx, p.delay(i)); serr != nil {
			return serr
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
}

func (p Policy) delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = Default.BaseDelay
	}
	max := p.MaxDelay
	if max <= 0 {
		max = Default.MaxDelay
	}

	d := base << uint(attempt)
	if d > max || d <= 0 {
		d = max
	}
	// Jitter of up to one base delay keeps concurrent callers from
	// hammering a recovering endpoint in lockstep.
	return d + time.Duration(rand.Int63n(int64(base)))
}

func (p Policy) wait(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
