package repositories

import (
	"context"

	"wardrobe/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAdmin(ctx context.Context) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, user *models.User) error
}
