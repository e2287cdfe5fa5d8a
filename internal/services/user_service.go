package services

import (
	"context"
	"errors"

	"wardrobe/internal/models"
	"wardrobe/internal/repositories"
	"wardrobe/pkg/logger"

	"go.uber.org/zap"
)

// UserService handles administrative user management.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers returns every user.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

// DeleteUser removes a user and returns it.
func (s *UserService) DeleteUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "User with email %s not found", email)
		}
		return nil, storeError(err)
	}

	if err := s.userRepo.Delete(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "User with email %s not found", email)
		}
		return nil, storeError(err)
	}

	logger.Log(ctx).Info(ctx, "user deleted", zap.String("email", email))
	return user, nil
}
