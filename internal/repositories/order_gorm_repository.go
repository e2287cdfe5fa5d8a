package repositories

import (
	"context"
	"errors"
	"fmt"

	"wardrobe/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create records a new order.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order of %s for %s: %w", order.NameClothing, order.EmailUser, translate(err))
	}
	return nil
}

// GetByEmailAndClothing retrieves the order a user placed for a clothing item.
func (r *GORMOrderRepository) GetByEmailAndClothing(ctx context.Context, email, clothing string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "email_user = ? AND name_clothing = ?", email, clothing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order of %s for %s: %w", clothing, email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order of %s for %s: %w", clothing, email, err)
	}
	return &order, nil
}

// ListByEmail retrieves every order placed by a user.
func (r *GORMOrderRepository) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Order("id").Find(&orders, "email_user = ?", email).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders for %s: %w", email, err)
	}
	return orders, nil
}

// Delete removes an order row.
func (r *GORMOrderRepository) Delete(ctx context.Context, order *models.Order) error {
	res := r.db.WithContext(ctx).Delete(&models.Order{}, order.ID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete order %d: %w", order.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %d: %w", order.ID, ErrNotFound)
	}
	return nil
}
