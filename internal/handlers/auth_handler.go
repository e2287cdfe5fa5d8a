package handlers

import (
	"strings"
	"time"

	"wardrobe/internal/config"
	"wardrobe/internal/middleware"
	"wardrobe/internal/models"
	"wardrobe/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validate,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/token", h.HandleToken)
	authRoutes.Get("/users/me", middleware.AuthRequired(h.authService), h.HandleMe)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	// Already checked by the birthdate tag.
	birthdate, _ := time.Parse(config.BirthdateLayout, req.Birthdate)

	user, err := h.authService.RegisterUser(c.UserContext(), services.RegisterInput{
		Name:      models.Capitalize(req.Name),
		Surname:   models.Capitalize(req.Surname),
		Birthdate: birthdate,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(toUserResponse(user))
}

// HandleToken exchanges an email and password for an access token. It
// accepts a form or a JSON body.
func (h *AuthHandler) HandleToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	token, err := h.authService.LoginUser(c.UserContext(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// HandleMe returns the authenticated user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return &services.Error{Kind: services.ErrUnauthorized, Detail: "Could not validate credentials"}
	}
	return c.JSON(toUserResponse(user))
}
