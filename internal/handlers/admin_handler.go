package handlers

import (
	"strings"

	"wardrobe/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles inventory, user and order administration.
type AdminHandler struct {
	clothing *services.ClothingService
	users    *services.UserService
	orders   *services.OrderService
	validate *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(clothing *services.ClothingService, users *services.UserService, orders *services.OrderService, validate *validator.Validate) *AdminHandler {
	return &AdminHandler{
		clothing: clothing,
		users:    users,
		orders:   orders,
		validate: validate,
	}
}

// RegisterRoutes registers the admin routes behind the given middleware.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	adminRoutes := router.Group("/admin", guards...)
	adminRoutes.Post("/clothing", h.HandleAddClothing)
	adminRoutes.Delete("/clothing", h.HandleDeleteClothing)
	adminRoutes.Get("/users", h.HandleListUsers)
	adminRoutes.Delete("/users", h.HandleDeleteUser)
	adminRoutes.Get("/orders/:email", h.HandleUserOrders)
	adminRoutes.Delete("/orders", h.HandleDeleteOrder)
}

// HandleAddClothing adds stock of a clothing size, creating both if needed.
func (h *AdminHandler) HandleAddClothing(c *fiber.Ctx) error {
	var req CreateClothingRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	res, err := h.clothing.AddStock(c.UserContext(), req.Name, req.Size, req.Quantity)
	if err != nil {
		return err
	}
	if res.Created {
		return c.JSON(StockCreatedResponse{Name: res.Name, Size: res.Size, Quantity: res.Quantity})
	}
	return c.JSON(StockUpdatedResponse{Status: "success", Message: res.Message(), Quantity: res.Quantity})
}

// HandleDeleteClothing removes a clothing item and its sizes.
func (h *AdminHandler) HandleDeleteClothing(c *fiber.Ctx) error {
	name := c.Query("name")
	if err := validateParam(h.validate, "name", name, clothingNameTag); err != nil {
		return err
	}

	clothing, err := h.clothing.DeleteClothing(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(ClothingResponse{Name: clothing.Name})
}

// HandleListUsers returns every user.
func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]UserSummary, 0, len(users))
	for i := range users {
		resp = append(resp, toUserSummary(&users[i]))
	}
	return c.JSON(resp)
}

// HandleDeleteUser removes a user by email.
func (h *AdminHandler) HandleDeleteUser(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	if err := validateParam(h.validate, "email", email, "required,email"); err != nil {
		return err
	}

	user, err := h.users.DeleteUser(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(toUserSummary(user))
}

// HandleUserOrders returns every order of a user.
func (h *AdminHandler) HandleUserOrders(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Params("email"))
	if err := validateParam(h.validate, "email", email, "required,email"); err != nil {
		return err
	}

	orders, err := h.orders.ListOrdersByEmail(c.UserContext(), email)
	if err != nil {
		return err
	}
	resp := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	return c.JSON(resp)
}

// HandleDeleteOrder removes the order a user placed for a clothing item.
func (h *AdminHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	if err := validateParam(h.validate, "email", email, "required,email"); err != nil {
		return err
	}
	name := c.Query("name")
	if err := validateParam(h.validate, "name", name, clothingNameTag); err != nil {
		return err
	}

	order, err := h.orders.DeleteOrder(c.UserContext(), email, name)
	if err != nil {
		return err
	}
	return c.JSON(toOrderResponse(order))
}
