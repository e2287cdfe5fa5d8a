// Package resilience retries transient failures with exponential backoff.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wardrobe/pkg/logger"

	"go.uber.org/zap"
)

// RetryConfig controls a Retry.
type RetryConfig struct {
	// MaxAttempts counts the first call.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	// ShouldRetry decides whether an error is worth another attempt.
	ShouldRetry func(error) bool
}

// DefaultRetryConfig returns three attempts starting at 50ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
		ShouldRetry:    defaultShouldRetry,
	}
}

// ErrContextCanceled is returned when ctx ends while waiting between attempts.
var ErrContextCanceled = errors.New("context was canceled during retry")

func defaultShouldRetry(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

const (
	LogRetryAttempt     = "retry attempt"
	LogRetrySuccess     = "retry succeeded"
	LogRetryMaxAttempts = "retry max attempts reached"
)

// Retry runs an operation until it succeeds, fails permanently, or runs out
// of attempts.
type Retry struct {
	name   string
	config RetryConfig
}

// NewRetry creates a Retry. Zero fields in config fall back to the defaults.
func NewRetry(name string, config RetryConfig) *Retry {
	def := DefaultRetryConfig()
	if config.MaxAttempts < 1 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = def.InitialBackoff
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = def.MaxBackoff
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = def.BackoffFactor
	}
	if config.ShouldRetry == nil {
		config.ShouldRetry = def.ShouldRetry
	}
	return &Retry{
		name:   name,
		config: config,
	}
}

// Execute calls operation with automatic retries.
func (r *Retry) Execute(ctx context.Context, operation func() error) error {
	log := logger.Log(ctx).With(zap.String("retry", r.name))

	var err error
	backoff := r.config.InitialBackoff

	for attempts := 1; ; attempts++ {
		err = operation()

		if err == nil || !r.config.ShouldRetry(err) {
			if attempts > 1 && err == nil {
				log.Info(ctx, LogRetrySuccess, zap.Int("attempts", attempts))
			}
			return err
		}

		if attempts >= r.config.MaxAttempts {
			log.Warn(ctx, LogRetryMaxAttempts,
				zap.Int("attempts", attempts),
				zap.Error(err))
			return err
		}

		log.Info(ctx, LogRetryAttempt,
			zap.Int("attempt", attempts),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		}

		backoff = time.Duration(float64(backoff) * r.config.BackoffFactor)
		if backoff > r.config.MaxBackoff {
			backoff = r.config.MaxBackoff
		}
	}
}
