package handlers

import (
	"wardrobe/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const clothingNameTag = "required,min=3,max=20,capitalized"

// ClothingHandler handles the public catalog.
type ClothingHandler struct {
	service  *services.ClothingService
	validate *validator.Validate
}

// NewClothingHandler creates a new ClothingHandler.
func NewClothingHandler(service *services.ClothingService, validate *validator.Validate) *ClothingHandler {
	return &ClothingHandler{
		service:  service,
		validate: validate,
	}
}

// RegisterRoutes registers the catalog routes behind the given middleware.
func (h *ClothingHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	clothingRoutes := router.Group("/clothing", guards...)
	clothingRoutes.Get("/", h.HandleListClothing)
	clothingRoutes.Get("/:name/sizes", h.HandleSizes)
}

// HandleListClothing returns the names of all clothing.
func (h *ClothingHandler) HandleListClothing(c *fiber.Ctx) error {
	clothing, err := h.service.ListClothing(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]ClothingResponse, 0, len(clothing))
	for _, item := range clothing {
		resp = append(resp, ClothingResponse{Name: item.Name})
	}
	return c.JSON(resp)
}

// HandleSizes returns the in-stock sizes of one clothing item.
func (h *ClothingHandler) HandleSizes(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := validateParam(h.validate, "name", name, clothingNameTag); err != nil {
		return err
	}

	sizes, err := h.service.InStockSizes(c.UserContext(), name)
	if err != nil {
		return err
	}
	resp := make([]SizeResponse, 0, len(sizes))
	for _, s := range sizes {
		resp = append(resp, SizeResponse{Size: s.Size, Quantity: s.Quantity})
	}
	return c.JSON(resp)
}
