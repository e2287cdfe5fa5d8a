package repositories

import (
	"context"
	"errors"
	"fmt"

	"wardrobe/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, translate(err))
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// GetAdmin retrieves the first administrator account.
func (r *GORMUserRepository) GetAdmin(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Order("id").First(&user, "is_admin = ?", true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return &user, nil
}

// List retrieves all users ordered by id.
func (r *GORMUserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Delete removes a user row.
func (r *GORMUserRepository) Delete(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, user.ID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user %s: %w", user.Email, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with email %s: %w", user.Email, ErrNotFound)
	}
	return nil
}
