package middleware

import (
	"context"
	"strings"

	"wardrobe/internal/models"
	"wardrobe/internal/services"
	"wardrobe/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const userLocalsKey = "user"

// TokenResolver turns a bearer token into the user it was issued to.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*models.User, error)
}

// AuthRequired is a Fiber middleware that rejects requests without a valid
// bearer token and stores the token's user for later handlers.
func AuthRequired(resolver TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		authHeader := c.Get(fiber.HeaderAuthorization)
		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return &services.Error{Kind: services.ErrUnauthorized, Detail: "Not authenticated"}
		}

		user, err := resolver.ResolveToken(ctx, strings.TrimSpace(token))
		if err != nil {
			logger.Log(ctx).Info(ctx, "token rejected", zap.Error(err))
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return err
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// AdminRequired lets only administrators through. It must run after
// AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin {
			return &services.Error{Kind: services.ErrForbidden, Detail: "You don't have access"}
		}
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthRequired.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(userLocalsKey).(*models.User)
	return user, ok && user != nil
}
