package repositories

import (
	"context"
	"errors"
	"fmt"

	"wardrobe/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMClothingRepository is a GORM implementation of ClothingRepository.
type GORMClothingRepository struct {
	db *gorm.DB
}

// NewGORMClothingRepository creates a new instance of GORMClothingRepository.
func NewGORMClothingRepository(db *gorm.DB) *GORMClothingRepository {
	return &GORMClothingRepository{
		db: db,
	}
}

// GetAll retrieves all clothing from the database, without sizes.
func (r *GORMClothingRepository) GetAll(ctx context.Context) ([]models.Clothing, error) {
	var clothing []models.Clothing
	if err := r.db.WithContext(ctx).Order("id").Find(&clothing).Error; err != nil {
		return nil, fmt.Errorf("failed to get all clothing: %w", err)
	}
	return clothing, nil
}

// GetByName retrieves a clothing item by name, without sizes.
func (r *GORMClothingRepository) GetByName(ctx context.Context, name string) (*models.Clothing, error) {
	return r.first(r.db.WithContext(ctx), name)
}

// GetWithSizes retrieves a clothing item by name with all of its sizes.
func (r *GORMClothingRepository) GetWithSizes(ctx context.Context, name string) (*models.Clothing, error) {
	return r.first(r.db.WithContext(ctx).Preload("Sizes", orderByID), name)
}

// GetWithSizesForUpdate is GetWithSizes with a row lock on the clothing.
// SQLite has no row locks and ignores the clause.
func (r *GORMClothingRepository) GetWithSizesForUpdate(ctx context.Context, name string) (*models.Clothing, error) {
	q := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Sizes", orderByID)
	return r.first(q, name)
}

func (r *GORMClothingRepository) first(q *gorm.DB, name string) (*models.Clothing, error) {
	var clothing models.Clothing
	if err := q.First(&clothing, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("clothing with name %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get clothing %s: %w", name, err)
	}
	return &clothing, nil
}

// Ensure returns the clothing with the given name, creating the row when it
// does not exist yet.
func (r *GORMClothingRepository) Ensure(ctx context.Context, name string) (*models.Clothing, error) {
	clothing, err := r.GetByName(ctx, name)
	if err == nil {
		return clothing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	clothing = &models.Clothing{Name: name}
	if err := r.db.WithContext(ctx).Create(clothing).Error; err != nil {
		return nil, fmt.Errorf("failed to create clothing %s: %w", name, translate(err))
	}
	return clothing, nil
}

// Delete removes a clothing item and its sizes.
func (r *GORMClothingRepository) Delete(ctx context.Context, clothing *models.Clothing) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("clothing_id = ?", clothing.ID).Delete(&models.Size{}).Error; err != nil {
			return fmt.Errorf("failed to delete sizes of %s: %w", clothing.Name, translate(err))
		}
		res := tx.Delete(&models.Clothing{}, clothing.ID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete clothing %s: %w", clothing.Name, translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("clothing with name %s: %w", clothing.Name, ErrNotFound)
		}
		return nil
	})
}

// GetSize retrieves one size of a clothing item.
func (r *GORMClothingRepository) GetSize(ctx context.Context, clothingID uint, size string) (*models.Size, error) {
	var s models.Size
	err := r.db.WithContext(ctx).First(&s, "clothing_id = ? AND size = ?", clothingID, size).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("size %s of clothing %d: %w", size, clothingID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get size %s of clothing %d: %w", size, clothingID, err)
	}
	return &s, nil
}

// AddSize creates a new size row.
func (r *GORMClothingRepository) AddSize(ctx context.Context, clothingID uint, size string, quantity int) (*models.Size, error) {
	s := &models.Size{ClothingID: clothingID, Size: size, Quantity: quantity}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, fmt.Errorf("failed to add size %s to clothing %d: %w", size, clothingID, translate(err))
	}
	return s, nil
}

// SetQuantity overwrites the stock of one size.
func (r *GORMClothingRepository) SetQuantity(ctx context.Context, clothingID uint, size string, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Size{}).
		Where("clothing_id = ? AND size = ?", clothingID, size).
		Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to set quantity of size %s: %w", size, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("size %s of clothing %d: %w", size, clothingID, ErrNotFound)
	}
	return nil
}

// DecrementQuantity takes one unit from a size. The WHERE clause keeps the
// quantity from going below zero even without a surrounding lock.
func (r *GORMClothingRepository) DecrementQuantity(ctx context.Context, sizeID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Size{}).
		Where("id = ? AND quantity > 0", sizeID).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement size %d: %w", sizeID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("size %d has no stock: %w", sizeID, ErrNotFound)
	}
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
