package backoff

import (
	"math/rand"
	"time"
)

// Policy describes a bounded exponential backoff with jitter. Delays are
// synchronous sleeps; a zero Policy retries once with no delay.
type Policy struct {
	Attempts  int
	Base      time.Duration
	MaxDelay  time.Duration
	JitterMax time.Duration
}

// Default matches the gentle throttle used for outbound provider calls:
// five retries starting at one second, doubling, capped at thirty seconds.
func Default() Policy {
	return Policy{
		Attempts:  5,
		Base:      time.Second,
		MaxDelay:  30 * time.Second,
		JitterMax: 250 * time.Millisecond,
	}
}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. retryable decides whether an error is transient;
// a nil retryable treats every error as final.
func (p Policy) Retry(fn func() error, retryable func(error) bool) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	delay := p.Base
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if retryable == nil || !retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		sleep := delay
		if p.JitterMax > 0 {
			sleep += time.Duration(rand.Int63n(int64(p.JitterMax)))
		}
		time.Sleep(sleep)

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return err
}
