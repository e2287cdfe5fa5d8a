package handlers

import (
	"fmt"

	"wardrobe/internal/middleware"
	"wardrobe/internal/models"
	"wardrobe/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, validate *validator.Validate) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validate,
	}
}

// RegisterRoutes registers the order routes behind the given middleware.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	orderRoutes := router.Group("/orders", guards...)
	orderRoutes.Post("/", h.HandleCreateOrder)
}

// HandleCreateOrder orders one unit of a clothing size for the current user.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return &services.Error{Kind: services.ErrUnauthorized, Detail: "Could not validate credentials"}
	}

	var req CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}
	size := models.NormalizeSize(req.Size)
	if !models.IsValidSize(size) {
		return &services.Error{Kind: services.ErrBadRequest, Detail: fmt.Sprintf("Size should be in: %v", models.Sizes)}
	}

	order, err := h.service.PlaceOrder(c.UserContext(), user, models.Capitalize(req.Name), size)
	if err != nil {
		return err
	}
	return c.JSON(OrderPlacedResponse{Name: order.NameClothing, Size: order.Size})
}
