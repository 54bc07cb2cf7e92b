package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// RetryPolicy is a fixed exponential backoff: the delay after attempt n is
// BaseDelay * 2^(n-1).
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy is used by the email and Messenger wrappers
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: 500 * time.Millisecond}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks an error that must not be retried
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn until it succeeds, returns a permanent error, the attempts are
// used up or ctx is done. It returns the number of attempts made and the last error.
func (p RetryPolicy) Do(ctx context.Context, log zerolog.Logger, fn func(ctx context.Context, attempt int) error) (int, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return attempt, nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			log.Error().Err(perm.err).Int("attempt", attempt).Msg("permanent failure, not retrying")
			return attempt, perm.err
		}
		if attempt == attempts {
			break
		}

		delay := p.BaseDelay << (attempt - 1)
		log.Warn().Err(lastErr).Int("attempt", attempt).Dur("backoff", delay).Msg("attempt failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}

	log.Error().Err(lastErr).Int("attempts", attempts).Msg("all attempts failed")
	return attempts, lastErr
}
