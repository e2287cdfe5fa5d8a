package services

import (
	"context"
	"errors"
	"time"

	"wardrobe/internal/models"
	"wardrobe/internal/repositories"
	"wardrobe/internal/resilience"
	"wardrobe/pkg/locker"
	"wardrobe/pkg/logger"

	"go.uber.org/zap"
)

// OrderService handles business logic related to orders.
type OrderService struct {
	store     repositories.Store
	inventory inventory
	events    EventPublisher
}

// NewOrderService creates a new OrderService. A nil lock falls back to an
// in-process KeyedLocker and a nil retry to NewStoreRetry(0).
func NewOrderService(store repositories.Store, lock locker.Locker, retry *resilience.Retry, events EventPublisher) *OrderService {
	return &OrderService{
		store:     store,
		inventory: newInventory(store, lock, retry),
		events:    events,
	}
}

// PlaceOrder records an order of one unit of a clothing size for user and
// takes that unit from stock. The stock check, the duplicate check, the
// insert and the decrement happen in one transaction under the clothing's
// lock.
func (s *OrderService) PlaceOrder(ctx context.Context, user *models.User, name, size string) (*models.Order, error) {
	name = models.Capitalize(name)
	size = models.NormalizeSize(size)

	var order *models.Order
	err := s.inventory.run(ctx, name, func(tx repositories.Store) error {
		order = nil
		clothing, err := tx.Clothing().GetWithSizesForUpdate(ctx, name)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newError(ErrNotFound, "Clothing with name %s not found", name)
			}
			return err
		}

		// A missing size and an empty one are reported the same way.
		available, ok := clothing.AvailableSize(size)
		if !ok {
			return outOfStock(name, size)
		}

		_, err = tx.Orders().GetByEmailAndClothing(ctx, user.Email, name)
		switch {
		case err == nil:
			return alreadyOrdered(name)
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}

		candidate := &models.Order{
			NameUser:     user.Name,
			Birthdate:    user.Birthdate,
			EmailUser:    user.Email,
			NameClothing: name,
			Size:         size,
		}
		if err := tx.Orders().Create(ctx, candidate); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return alreadyOrdered(name)
			}
			return err
		}

		if err := tx.Clothing().DecrementQuantity(ctx, available.ID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return outOfStock(name, size)
			}
			return err
		}
		order = candidate
		return nil
	})
	if err != nil {
		logger.Log(ctx).Info(ctx, "order rejected",
			zap.String("email", user.Email),
			zap.String("clothing", name),
			zap.String("size", size),
			zap.Error(err))
		return nil, err
	}

	logger.Log(ctx).Info(ctx, "order placed",
		zap.String("email", user.Email),
		zap.String("clothing", name),
		zap.String("size", size))

	publishEvent(ctx, s.events, EventOrderPlaced, OrderEvent{
		Email:      order.EmailUser,
		Clothing:   order.NameClothing,
		Size:       order.Size,
		OccurredAt: time.Now().UTC(),
	})
	return order, nil
}

func outOfStock(name, size string) *Error {
	return newError(ErrOutOfStock, "The %s size %s are out of stock", name, size)
}

func alreadyOrdered(name string) *Error {
	return newError(ErrConflict, "You have already ordered %s", name)
}

// ListOrdersByEmail returns every order of a user.
func (s *OrderService) ListOrdersByEmail(ctx context.Context, email string) ([]models.Order, error) {
	orders, err := s.store.Orders().ListByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err)
	}
	if len(orders) == 0 {
		return nil, newError(ErrNotFound, "The user with email %s has no orders", email)
	}
	return orders, nil
}

// DeleteOrder removes the order a user placed for a clothing item.
func (s *OrderService) DeleteOrder(ctx context.Context, email, name string) (*models.Order, error) {
	notOrdered := newError(ErrConflict, "The user with email address %s does not have an order for the %s", email, name)

	var deleted *models.Order
	err := s.inventory.run(ctx, name, func(tx repositories.Store) error {
		order, err := tx.Orders().GetByEmailAndClothing(ctx, email, name)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return notOrdered
			}
			return err
		}
		if err := tx.Orders().Delete(ctx, order); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return notOrdered
			}
			return err
		}
		deleted = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log(ctx).Info(ctx, "order deleted",
		zap.String("email", email),
		zap.String("clothing", name))

	publishEvent(ctx, s.events, EventOrderDeleted, OrderEvent{
		Email:      deleted.EmailUser,
		Clothing:   deleted.NameClothing,
		Size:       deleted.Size,
		OccurredAt: time.Now().UTC(),
	})
	return deleted, nil
}
