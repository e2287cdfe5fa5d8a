package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"wardrobe/internal/resilience"

	"github.com/stretchr/testify/assert"
)

var errTransient = errors.New("transient")

func fastConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		BackoffFactor:  2,
		ShouldRetry:    func(err error) bool { return errors.Is(err, errTransient) },
	}
}

func TestRetry_SucceedsAfterTransientErrors(t *testing.T) {
	r := resilience.NewRetry("test", fastConfig())

	calls := 0
	err := r.Execute(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	r := resilience.NewRetry("test", fastConfig())
	permanent := errors.New("permanent")

	calls := 0
	err := r.Execute(context.Background(), func() error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	r := resilience.NewRetry("test", fastConfig())

	calls := 0
	err := r.Execute(context.Background(), func() error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestRetry_ContextCanceledWhileWaiting(t *testing.T) {
	cfg := fastConfig()
	cfg.InitialBackoff = time.Hour
	cfg.MaxBackoff = time.Hour
	r := resilience.NewRetry("test", cfg)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := r.Execute(ctx, func() error {
		calls++
		cancel()
		return errTransient
	})

	assert.ErrorIs(t, err, resilience.ErrContextCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestNewRetry_FillsDefaults(t *testing.T) {
	r := resilience.NewRetry("test", resilience.RetryConfig{})

	calls := 0
	err := r.Execute(context.Background(), func() error {
		calls++
		return context.Canceled
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
