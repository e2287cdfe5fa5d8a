package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wardrobe/internal/models"
	"wardrobe/internal/repositories"
	"wardrobe/internal/resilience"
	"wardrobe/pkg/locker"
	"wardrobe/pkg/logger"

	"go.uber.org/zap"
)

// StockResult describes the outcome of AddStock.
type StockResult struct {
	Name string
	Size string
	// Added is the number of units requested.
	Added int
	// Quantity is the stock of the size after the operation.
	Quantity int
	// Created is true when the size did not exist before.
	Created bool
}

// ClothingService handles the catalog and its stock.
type ClothingService struct {
	store     repositories.Store
	inventory inventory
	events    EventPublisher
}

// NewClothingService creates a new ClothingService. A nil lock falls back to
// an in-process KeyedLocker and a nil retry to NewStoreRetry(0).
func NewClothingService(store repositories.Store, lock locker.Locker, retry *resilience.Retry, events EventPublisher) *ClothingService {
	return &ClothingService{
		store:     store,
		inventory: newInventory(store, lock, retry),
		events:    events,
	}
}

// ListClothing returns every clothing item without sizes.
func (s *ClothingService) ListClothing(ctx context.Context) ([]models.Clothing, error) {
	clothing, err := s.store.Clothing().GetAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return clothing, nil
}

// InStockSizes returns the sizes of a clothing item that have stock left.
func (s *ClothingService) InStockSizes(ctx context.Context, name string) ([]models.Size, error) {
	clothing, err := s.store.Clothing().GetWithSizes(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "Clothing with name %s not found", name)
		}
		return nil, storeError(err)
	}

	sizes := clothing.InStock()
	if len(sizes) == 0 {
		return nil, newError(ErrConflict, "There are no sizes for this clothing")
	}
	return sizes, nil
}

// AddStock adds quantity units of a size, creating the clothing and the
// size when they do not exist yet.
func (s *ClothingService) AddStock(ctx context.Context, name, size string, quantity int) (*StockResult, error) {
	name = models.Capitalize(name)
	size = models.NormalizeSize(size)
	if !models.IsValidSize(size) {
		return nil, newError(ErrValidation, "Size should be in: %v", models.Sizes)
	}
	if quantity <= 0 {
		return nil, newError(ErrValidation, "Quantity clothes must be more than 0")
	}

	var result *StockResult
	err := s.inventory.run(ctx, name, func(tx repositories.Store) error {
		result = nil
		if _, err := tx.Clothing().Ensure(ctx, name); err != nil {
			return err
		}
		// Same row lock as placement, so the absolute write below cannot
		// overwrite a concurrent decrement.
		clothing, err := tx.Clothing().GetWithSizesForUpdate(ctx, name)
		if err != nil {
			return err
		}

		existing, err := sizeOf(clothing, size)
		switch {
		case err == nil:
			total := existing.Quantity + quantity
			if err := tx.Clothing().SetQuantity(ctx, clothing.ID, size, total); err != nil {
				return err
			}
			result = &StockResult{Name: name, Size: size, Added: quantity, Quantity: total}
			return nil
		case errors.Is(err, repositories.ErrNotFound):
			created, err := tx.Clothing().AddSize(ctx, clothing.ID, size, quantity)
			if err != nil {
				return err
			}
			result = &StockResult{Name: name, Size: size, Added: quantity, Quantity: created.Quantity, Created: true}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Log(ctx).Info(ctx, "stock added",
		zap.String("clothing", name),
		zap.String("size", size),
		zap.Int("added", quantity),
		zap.Int("quantity", result.Quantity))

	publishEvent(ctx, s.events, EventStockAdded, StockEvent{
		Clothing:   name,
		Size:       size,
		Added:      quantity,
		Quantity:   result.Quantity,
		OccurredAt: time.Now().UTC(),
	})
	return result, nil
}

// Message is the human readable summary of a restock.
func (r *StockResult) Message() string {
	return fmt.Sprintf("Added %d units %s size %s", r.Added, r.Name, r.Size)
}

func sizeOf(clothing *models.Clothing, code string) (*models.Size, error) {
	for i := range clothing.Sizes {
		if clothing.Sizes[i].Size == code {
			return &clothing.Sizes[i], nil
		}
	}
	return nil, fmt.Errorf("size %s of %s: %w", code, clothing.Name, repositories.ErrNotFound)
}

// DeleteClothing removes a clothing item with all of its sizes.
func (s *ClothingService) DeleteClothing(ctx context.Context, name string) (*models.Clothing, error) {
	var deleted *models.Clothing
	err := s.inventory.run(ctx, name, func(tx repositories.Store) error {
		clothing, err := tx.Clothing().GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newError(ErrNotFound, "Clothing with name %s not found", name)
			}
			return err
		}
		if err := tx.Clothing().Delete(ctx, clothing); err != nil {
			return err
		}
		deleted = clothing
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log(ctx).Info(ctx, "clothing deleted", zap.String("clothing", name))
	return deleted, nil
}
