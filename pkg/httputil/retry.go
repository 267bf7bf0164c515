package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// MaxRetryAfter caps how long a server's Retry-After may delay a request.
const MaxRetryAfter = 30 * time.Second

// RetryableError marks a transient failure (network error, 429 or 5xx
// response). After, when positive, is the wait the server asked for.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn up to attempts times. Only a [RetryableError] is retried.
// Between attempts it waits the error's After, or else delay, which doubles
// after every failure. It returns the last error, or ctx.Err() when ctx ends
// while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		if re.After > 0 {
			wait = min(re.After, MaxRetryAfter)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return err
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP
// date. It returns zero when the header is absent or unusable.
func retryAfter(h http.Header, now time.Time) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}
