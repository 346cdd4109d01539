package deal

import (
	"context"
	"fmt"
	"time"

	"github.com/tsiemasilo-dev/algohive/retry"
)

// Source fetches deal records for a half-open time range [from, to).
// Fetch must be an idempotent read: retrying with the same arguments is
// safe, and "no data" is an empty slice, not an error.
type Source interface {
	Fetch(ctx context.Context, from, to time.Time) ([]Record, error)
}

// Session is an exclusive terminal session. Only one may be active at a
// time; Close must run whether or not the work succeeded.
type Session interface {
	Source
	Close() error
}

// SessionFactory opens terminal sessions.
type SessionFactory interface {
	Acquire(ctx context.Context) (Session, error)
}

// WithSession acquires a session, runs fn against it, and tears the
// session down deterministically regardless of fn's outcome.
func WithSession(ctx context.Context, f SessionFactory, fn func(Source) error) error {
	sess, err := f.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire session: %w", err)
	}
	defer sess.Close()
	return fn(sess)
}

// RetryingSource wraps a Source with the fetch ladder: backoff retries of
// the full range, then a per-day split where each chunk gets one more
// try, then whatever was collected. A persistently failing source yields
// an empty result, never an error, so one bad range cannot abort a run.
type RetryingSource struct {
	Source Source
	Policy retry.Policy
}

func (s RetryingSource) Fetch(ctx context.Context, from, to time.Time) ([]Record, error) {
	var out []Record
	err := s.Policy.Do(ctx, func(ctx context.Context) error {
		r, err := s.Source.Fetch(ctx, from, to)
		if err != nil {
			return err
		}
		out = r
		return nil
	})
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var partial []Record
	for day := from.Truncate(24 * time.Hour); day.Before(to); day = day.Add(24 * time.Hour) {
		chunkFrom := day
		if chunkFrom.Before(from) {
			chunkFrom = from
		}
		chunkTo := day.Add(24 * time.Hour)
		if chunkTo.After(to) {
			chunkTo = to
		}
		r, err := s.Source.Fetch(ctx, chunkFrom, chunkTo)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		partial = append(partial, r...)
	}
	return partial, nil
}
