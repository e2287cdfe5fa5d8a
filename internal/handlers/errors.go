package handlers

import (
	"errors"
	"fmt"

	"wardrobe/internal/services"
	"wardrobe/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

var statusByKind = []struct {
	kind   error
	status int
}{
	{services.ErrValidation, fiber.StatusUnprocessableEntity},
	{services.ErrBadRequest, fiber.StatusBadRequest},
	{services.ErrEmailTaken, fiber.StatusBadRequest},
	{services.ErrNotFound, fiber.StatusNotFound},
	{services.ErrOutOfStock, fiber.StatusNotFound},
	{services.ErrConflict, fiber.StatusConflict},
	{services.ErrUnauthorized, fiber.StatusUnauthorized},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{services.ErrForbidden, fiber.StatusForbidden},
	{services.ErrStore, fiber.StatusServiceUnavailable},
}

// StatusOf returns the HTTP status for an error returned by a handler.
func StatusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	for _, m := range statusByKind {
		if errors.Is(err, m.kind) {
			return m.status
		}
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler writes every error as {"detail": ...}. Validation failures
// also carry a field to message map under "errors".
func ErrorHandler(c *fiber.Ctx, err error) error {
	ctx := c.UserContext()
	status := StatusOf(err)
	body := fiber.Map{}

	var (
		verr *ValidationError
		derr *services.Error
		fe   *fiber.Error
	)
	switch {
	case errors.As(err, &verr):
		body["detail"] = verr.Error()
		if len(verr.Fields) > 0 {
			body["errors"] = verr.Fields
		}
	case errors.As(err, &derr):
		body["detail"] = derr.Detail
	case errors.As(err, &fe):
		body["detail"] = utils.StatusMessage(fe.Code)
	default:
		body["detail"] = fmt.Sprintf("Server error: %v", err)
	}

	log := logger.Log(ctx).With(zap.Int("status", status), zap.Error(err))
	if status >= fiber.StatusInternalServerError {
		log.Error(ctx, "request error")
	} else {
		log.Debug(ctx, "request error")
	}

	if status == fiber.StatusUnauthorized {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}
	return c.Status(status).JSON(body)
}
