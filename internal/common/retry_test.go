package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return nil
	}, RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	start := time.Now()
	err := WithRetry(context.Background(), func() error {
		attempts++
		return &RetryableError{Err: errors.New("boom"), Retryable: true}
	}, RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 2.0})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 3, attempts)
	// Two backoff sleeps: 1ms then 2ms.
	assert.GreaterOrEqual(t, time.Since(start), 3*time.Millisecond)
}

func TestWithRetry_RecoversAfterTransientFailure(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return &RetryableError{Err: errors.New("transient"), Retryable: true}
		}
		return nil
	}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	attempts := 0
	permanent := errors.New("permanent")
	err := WithRetry(context.Background(), func() error {
		attempts++
		return &RetryableError{Err: permanent, Retryable: false}
	}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Millisecond})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.NotErrorIs(t, err, ErrMaxRetries)
}

func TestWithRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	err := WithRetry(ctx, func() error {
		attempts++
		return &RetryableError{Err: errors.New("transient"), Retryable: true}
	}, RetryOptions{MaxAttempts: 10, InitialDelay: 50 * time.Millisecond})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrBackendTimeout))
	assert.True(t, IsRetryable(ErrBackendUnavailable))
	assert.True(t, IsRetryable(ErrBackendError))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: false}))
	assert.False(t, IsRetryable(ErrInvalidInput))
	assert.False(t, IsRetryable(errors.New("something else")))
}
