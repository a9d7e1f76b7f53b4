package backoff

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	policy := Policy{Attempts: 4, Base: time.Millisecond}

	calls := 0
	err := policy.Retry(func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, func(error) bool { return true })

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	policy := Policy{Attempts: 5, Base: time.Millisecond}
	fatal := errors.New("permission denied")

	calls := 0
	err := policy.Retry(func() error {
		calls++
		return fatal
	}, func(err error) bool { return false })

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestRetryExhaustsAttemptBudget(t *testing.T) {
	policy := Policy{Attempts: 3, Base: time.Millisecond}
	transient := errors.New("rate limited")

	calls := 0
	err := policy.Retry(func() error {
		calls++
		return transient
	}, func(error) bool { return true })

	require.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls)
}

func TestRetryNilRetryableIsFinal(t *testing.T) {
	policy := Default()

	calls := 0
	err := policy.Retry(func() error {
		calls++
		return errors.New("boom")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
