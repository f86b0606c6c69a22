package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rblxlocate/pkg/config"
	errs "rblxlocate/pkg/errors"
	"rblxlocate/pkg/logger"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{6, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	for i := 0; i < 20; i++ {
		d := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, d, 140*time.Millisecond)
		assert.LessOrEqual(t, d, 260*time.Millisecond)
	}
}

func transportErr() error {
	return errs.NewTransport("connection reset", errors.New("read: connection reset by peer"))
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	attempts := 0
	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
	}

	err := Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return transportErr()
		}
		return nil
	}, cfg)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	var retried []int
	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		OnRetry:     func(attempt int, _ error, _ time.Duration) { retried = append(retried, attempt) },
		Logger:      logger.NewNopLogger(),
	}

	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return errs.FromStatus(503)
	}, cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
	assert.True(t, errs.IsTransport(err))
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDoNonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"auth", errs.FromStatus(401)},
		{"decode", errs.NewDecode("missing Collection", 200, nil)},
		{"plain", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := Do(context.Background(), func(context.Context) error {
				attempts++
				return tt.err
			}, &Config{MaxAttempts: 5, Backoff: &ConstantBackoff{Delay: time.Millisecond}})

			assert.Same(t, tt.err, err)
			assert.Equal(t, 1, attempts)
		})
	}
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := Do(ctx, func(context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return transportErr()
	}, &Config{MaxAttempts: 5, Backoff: &ConstantBackoff{Delay: 50 * time.Millisecond}})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, errs.IsTransport(err))
	assert.Equal(t, 2, attempts)
}

func TestDoNilConfigRunsOnce(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return transportErr()
	}, nil)

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	result, err := DoWithResult(context.Background(), func(context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", errs.FromStatus(429)
		}
		return "page", nil
	}, &Config{MaxAttempts: 3, Backoff: &ConstantBackoff{Delay: time.Millisecond}})

	require.NoError(t, err)
	assert.Equal(t, "page", result)
	assert.Equal(t, 2, attempts)
}

func TestFromConfig(t *testing.T) {
	rc := config.DefaultConfig().Retry
	assert.Nil(t, FromConfig(rc, logger.NewNopLogger()))

	rc.Enabled = true
	cfg := FromConfig(rc, logger.NewNopLogger())
	require.NotNil(t, cfg)
	assert.Equal(t, rc.MaxAttempts, cfg.MaxAttempts)

	eb, ok := cfg.Backoff.(*ExponentialBackoff)
	require.True(t, ok)
	assert.Equal(t, rc.BaseDelay, eb.BaseDelay)
	assert.Equal(t, rc.MaxDelay, eb.MaxDelay)
}

func TestWait(t *testing.T) {
	require.NoError(t, Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
}
