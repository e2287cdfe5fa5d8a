package repositories

import (
	"context"

	"wardrobe/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByEmailAndClothing(ctx context.Context, email, clothing string) (*models.Order, error)
	ListByEmail(ctx context.Context, email string) ([]models.Order, error)
	Delete(ctx context.Context, order *models.Order) error
}
