package repositories

import (
	"context"

	"wardrobe/internal/models"
)

// ClothingRepository defines the interface for clothing and size data access.
type ClothingRepository interface {
	GetAll(ctx context.Context) ([]models.Clothing, error)
	GetByName(ctx context.Context, name string) (*models.Clothing, error)
	// GetWithSizes loads a clothing item together with all of its sizes.
	GetWithSizes(ctx context.Context, name string) (*models.Clothing, error)
	// GetWithSizesForUpdate is GetWithSizes that also locks the clothing row
	// until the surrounding transaction ends.
	GetWithSizesForUpdate(ctx context.Context, name string) (*models.Clothing, error)
	// Ensure returns the clothing with the given name, creating it if needed.
	Ensure(ctx context.Context, name string) (*models.Clothing, error)
	Delete(ctx context.Context, clothing *models.Clothing) error

	GetSize(ctx context.Context, clothingID uint, size string) (*models.Size, error)
	// AddSize inserts a size row. Callers check for an existing row first.
	AddSize(ctx context.Context, clothingID uint, size string, quantity int) (*models.Size, error)
	// SetQuantity overwrites the stock of a size with an absolute value.
	SetQuantity(ctx context.Context, clothingID uint, size string, quantity int) error
	// DecrementQuantity takes one unit from a size. It returns ErrNotFound
	// when the size is missing or already empty.
	DecrementQuantity(ctx context.Context, sizeID uint) error
}
