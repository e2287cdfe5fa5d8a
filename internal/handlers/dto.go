package handlers

import (
	"wardrobe/internal/config"
	"wardrobe/internal/models"
)

// RegisterRequest is the body of POST /auth/register/.
type RegisterRequest struct {
	Name      string `json:"name" form:"name" validate:"required,min=4,max=30,letters"`
	Surname   string `json:"surname" form:"surname" validate:"required,min=4,max=30,letters"`
	Email     string `json:"email" form:"email" validate:"required,min=9,max=40,email"`
	Birthdate string `json:"birthdate" form:"birthdate" validate:"required,birthdate"`
	Password  string `json:"password" form:"password" validate:"required,min=6"`
}

// TokenRequest is the body of POST /auth/token/. Username holds the email.
type TokenRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// CreateClothingRequest is the body of POST /admin/clothing/.
type CreateClothingRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=20,letters"`
	Size     string `json:"size" validate:"required,size"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

// CreateOrderRequest is the body of POST /orders/.
type CreateOrderRequest struct {
	Name string `json:"name" validate:"required,min=3,max=20,letters"`
	Size string `json:"size"`
}

// UserResponse is the full view of a user.
type UserResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Birthdate string `json:"birthdate"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
	IsAdmin   bool   `json:"is_admin"`
	IsUser    bool   `json:"is_user"`
}

// UserSummary is the admin view of a user.
type UserSummary struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Birthdate string `json:"birthdate"`
	Email     string `json:"email"`
}

// OrderResponse is the admin view of an order.
type OrderResponse struct {
	NameUser     string `json:"name_user"`
	Birthdate    string `json:"birthdate"`
	EmailUser    string `json:"email_user"`
	NameClothing string `json:"name_clothing"`
	Size         string `json:"size"`
}

// ClothingResponse is one entry of the catalog.
type ClothingResponse struct {
	Name string `json:"name"`
}

// SizeResponse is one in-stock size.
type SizeResponse struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// OrderPlacedResponse echoes a placed order.
type OrderPlacedResponse struct {
	Name string `json:"name"`
	Size string `json:"size"`
}

// StockCreatedResponse is returned when a new size was added.
type StockCreatedResponse struct {
	Name     string `json:"name"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// StockUpdatedResponse is returned when an existing size was restocked.
type StockUpdatedResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Quantity int    `json:"quantity"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Surname:   u.Surname,
		Birthdate: u.Birthdate.Format(config.BirthdateLayout),
		Email:     u.Email,
		IsActive:  u.IsActive,
		IsAdmin:   u.IsAdmin,
		IsUser:    u.IsUser,
	}
}

func toUserSummary(u *models.User) UserSummary {
	return UserSummary{
		Name:      u.Name,
		Surname:   u.Surname,
		Birthdate: u.Birthdate.Format(config.BirthdateLayout),
		Email:     u.Email,
	}
}

func toOrderResponse(o *models.Order) OrderResponse {
	return OrderResponse{
		NameUser:     o.NameUser,
		Birthdate:    o.Birthdate.Format(config.BirthdateLayout),
		EmailUser:    o.EmailUser,
		NameClothing: o.NameClothing,
		Size:         o.Size,
	}
}
