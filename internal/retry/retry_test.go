package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/justsurfingit/vacancy-parser/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("503 service unavailable")

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	var delays []time.Duration
	err := retry.Do(context.Background(), retry.Policy{
		MaxAttempts: 3,
		Backoff:     retry.Linear(time.Millisecond),
		OnRetry: func(_ int, d time.Duration, _ error) {
			delays = append(delays, d)
		},
	}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, delays)
}

func TestDo_ExhaustsAndWrapsLastError(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(context.Background(), retry.Policy{MaxAttempts: 3}, func(context.Context) error {
		calls++
		return errTransient
	})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	assert.ErrorIs(t, err, errTransient)
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	permanent := errors.New("bad request")
	calls := 0
	err := retry.Do(context.Background(), retry.Policy{
		MaxAttempts: 5,
		IsRetryable: func(err error) bool { return !errors.Is(err, permanent) },
	}, func(context.Context) error {
		calls++
		return permanent
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, permanent)
	assert.NotErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
}

func TestDo_ContextCanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry.Do(ctx, retry.Policy{
		MaxAttempts: 3,
		Backoff:     retry.Linear(time.Hour),
		OnRetry:     func(int, time.Duration, error) { cancel() },
	}, func(context.Context) error {
		calls++
		return errTransient
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, errTransient)
}

func TestBackoffFunctions(t *testing.T) {
	t.Parallel()

	lin := retry.Linear(500 * time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, lin(1))
	assert.Equal(t, 1500*time.Millisecond, lin(3))

	exp := retry.Exponential(time.Second, 5*time.Second)
	assert.Equal(t, time.Second, exp(1))
	assert.Equal(t, 4*time.Second, exp(3))
	assert.Equal(t, 5*time.Second, exp(4))
}

func TestNotCanceled(t *testing.T) {
	t.Parallel()

	assert.True(t, retry.NotCanceled(errTransient))
	assert.False(t, retry.NotCanceled(context.Canceled))
	assert.False(t, retry.NotCanceled(context.DeadlineExceeded))
}
