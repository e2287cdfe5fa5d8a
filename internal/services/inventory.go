package services

import (
	"context"
	"fmt"

	"wardrobe/internal/repositories"
	"wardrobe/internal/resilience"
	"wardrobe/pkg/locker"
	"wardrobe/pkg/logger"

	"go.uber.org/zap"
)

// NewStoreRetry returns a Retry that repeats a transaction only after
// transient store failures.
func NewStoreRetry(attempts int) *resilience.Retry {
	cfg := resilience.DefaultRetryConfig()
	if attempts > 0 {
		cfg.MaxAttempts = attempts
	}
	cfg.ShouldRetry = repositories.IsRetryable
	return resilience.NewRetry("store-transaction", cfg)
}

// inventory runs stock-changing work for one clothing item under the
// clothing's lock and inside a single, retried store transaction.
type inventory struct {
	store  repositories.Store
	locker locker.Locker
	retry  *resilience.Retry
}

func newInventory(store repositories.Store, lock locker.Locker, retry *resilience.Retry) inventory {
	if lock == nil {
		lock = locker.NewKeyedLocker()
	}
	if retry == nil {
		retry = NewStoreRetry(0)
	}
	return inventory{store: store, locker: lock, retry: retry}
}

func clothingLockKey(name string) string {
	return "clothing:" + name
}

// run executes fn for the clothing named name. Errors that are not domain
// errors come back as ErrStore.
func (inv inventory) run(ctx context.Context, name string, fn func(tx repositories.Store) error) error {
	release, err := inv.locker.Lock(ctx, clothingLockKey(name))
	if err != nil {
		return storeError(fmt.Errorf("could not lock %s: %w", name, err))
	}
	defer func() {
		if err := release(); err != nil {
			logger.Log(ctx).Warn(ctx, "failed to release clothing lock",
				zap.String("clothing", name), zap.Error(err))
		}
	}()

	err = inv.retry.Execute(ctx, func() error {
		return inv.store.Transaction(ctx, fn)
	})
	if err != nil {
		return asDomainError(err)
	}
	return nil
}
