package pipeline

import (
	"context"
	"errors"
	"time"

	"codeberg.org/charliev/ankivocab/internal/audio"
	"codeberg.org/charliev/ankivocab/internal/translation"
)

// transient reports whether err is worth retrying.
func transient(err error) bool {
	return errors.Is(err, translation.ErrUnavailable) || errors.Is(err, audio.ErrUnavailable)
}

// retryCall runs fn up to attempts times, doubling the delay between
// attempts starting from base. Only transient errors are retried;
// permanent failures and context cancellation return immediately.
func retryCall(ctx context.Context, attempts int, base time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := base
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil || !transient(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
