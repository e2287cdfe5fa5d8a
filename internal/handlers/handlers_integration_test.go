package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"wardrobe/internal/database"
	"wardrobe/internal/handlers"
	"wardrobe/internal/middleware"
	"wardrobe/internal/repositories"
	"wardrobe/internal/services"
	"wardrobe/pkg/locker"
	"wardrobe/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "adminpass"
)

// setupApp sets up a Fiber app backed by in-memory SQLite with every
// handler registered.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := database.OpenInMemorySQLite()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	store := repositories.NewGORMStore(db)

	authService, err := services.NewAuthService(store.Users(), services.AuthConfig{
		Secret:   "test_jwt_secret",
		TokenTTL: 15 * time.Minute,
	})
	require.NoError(t, err)
	authService.SetHashCost(bcrypt.MinCost)
	require.NoError(t, authService.EnsureAdmin(t.Context(), services.AdminAccount{
		Name:      "Admin",
		Surname:   "Adminov",
		Birthdate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Email:     adminEmail,
		Password:  adminPassword,
	}))

	userService := services.NewUserService(store.Users())
	lock := locker.NewKeyedLocker()
	clothingService := services.NewClothingService(store, lock, nil, nil)
	orderService := services.NewOrderService(store, lock, nil, nil)

	validate := handlers.NewValidator()
	authHandler := handlers.NewAuthHandler(authService, validate)
	clothingHandler := handlers.NewClothingHandler(clothingService, validate)
	orderHandler := handlers.NewOrderHandler(orderService, validate)
	adminHandler := handlers.NewAdminHandler(clothingService, userService, orderService, validate)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler, UnescapePath: true})
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logger.NewNop()))

	authRequired := middleware.AuthRequired(authService)
	authHandler.RegisterRoutes(app)
	clothingHandler.RegisterRoutes(app, authRequired)
	orderHandler.RegisterRoutes(app, authRequired)
	adminHandler.RegisterRoutes(app, authRequired, middleware.AdminRequired())
	return app
}

type response struct {
	status int
	header http.Header
	body   any
}

func (r response) object(t *testing.T) map[string]any {
	t.Helper()
	obj, ok := r.body.(map[string]any)
	require.True(t, ok, "body is not an object: %v", r.body)
	return obj
}

func (r response) list(t *testing.T) []any {
	t.Helper()
	list, ok := r.body.([]any)
	require.True(t, ok, "body is not a list: %v", r.body)
	return list
}

func do(t *testing.T, app *fiber.App, req *http.Request, token string) response {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return response{status: resp.StatusCode, header: resp.Header, body: body}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any, token string) response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return do(t, app, req, token)
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp := do(t, app, req, "")
	require.Equal(t, http.StatusOK, resp.status, resp.body)
	obj := resp.object(t)
	assert.Equal(t, "bearer", obj["token_type"])
	token, _ := obj["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func registerRoma(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/auth/register/", map[string]string{
		"name":      "roma",
		"surname":   "romanov",
		"email":     "roma@example.com",
		"birthdate": "2000-01-30",
		"password":  "secret1",
	}, "")
	require.Equal(t, http.StatusOK, resp.status, resp.body)
	return login(t, app, "roma@example.com", "secret1")
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/auth/register/", map[string]string{
		"name":      "roma",
		"surname":   "romanov",
		"email":     "roma@example.com",
		"birthdate": "2000-01-30",
		"password":  "secret1",
	}, "")
	require.Equal(t, http.StatusOK, resp.status)
	user := resp.object(t)
	assert.Equal(t, "Roma", user["name"])
	assert.Equal(t, "Romanov", user["surname"])
	assert.Equal(t, "2000-01-30", user["birthdate"])
	assert.Equal(t, true, user["is_user"])
	assert.Equal(t, false, user["is_admin"])
	assert.NotContains(t, user, "hashed_password")

	// Duplicate registration
	resp = doJSON(t, app, http.MethodPost, "/auth/register", map[string]string{
		"name":      "Other",
		"surname":   "Person",
		"email":     "roma@example.com",
		"birthdate": "2001-02-03",
		"password":  "secret2",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, "Email already registered", resp.object(t)["detail"])

	// JSON login works as well as form login
	resp = doJSON(t, app, http.MethodPost, "/auth/token/", map[string]string{
		"username": "roma@example.com",
		"password": "secret1",
	}, "")
	assert.Equal(t, http.StatusOK, resp.status)
	token := login(t, app, "roma@example.com", "secret1")

	resp = doJSON(t, app, http.MethodGet, "/auth/users/me/", nil, token)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "roma@example.com", resp.object(t)["email"])

	// Wrong password
	resp = doJSON(t, app, http.MethodPost, "/auth/token/", map[string]string{
		"username": "roma@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "Incorrect email or password", resp.object(t)["detail"])
	assert.Equal(t, "Bearer", resp.header.Get("WWW-Authenticate"))
}

func TestAuthRegisterValidation(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/auth/register/", map[string]string{
		"name":      "R2d2",
		"surname":   "Romanov",
		"email":     "roma@example.com",
		"birthdate": "1960-01-01",
		"password":  "123",
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	errs, ok := resp.object(t)["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "birthdate")
	assert.Contains(t, errs, "password")
	assert.NotContains(t, errs, "surname")

	req := httptest.NewRequest(http.MethodPost, "/auth/register/", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp = do(t, app, req, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/clothing/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "Bearer", resp.header.Get("WWW-Authenticate"))

	resp = doJSON(t, app, http.MethodGet, "/auth/users/me/", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "Could not validate credentials", resp.object(t)["detail"])

	token := registerRoma(t, app)
	resp = doJSON(t, app, http.MethodGet, "/admin/users/", nil, token)
	assert.Equal(t, http.StatusForbidden, resp.status)
	assert.Equal(t, "You don't have access", resp.object(t)["detail"])
}

func TestUnknownRoute(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "Not Found", resp.object(t)["detail"])
}

func TestInventoryAndOrders(t *testing.T) {
	app := setupApp(t)
	admin := login(t, app, adminEmail, adminPassword)
	roma := registerRoma(t, app)

	// New clothing and size
	resp := doJSON(t, app, http.MethodPost, "/admin/clothing/", map[string]any{
		"name": "shirt", "size": "m", "quantity": 10,
	}, admin)
	require.Equal(t, http.StatusOK, resp.status, resp.body)
	assert.Equal(t, map[string]any{"name": "Shirt", "size": "M", "quantity": float64(10)}, resp.body)

	// Restock is additive
	resp = doJSON(t, app, http.MethodPost, "/admin/clothing/", map[string]any{
		"name": "Shirt", "size": "M", "quantity": 5,
	}, admin)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, map[string]any{
		"status":   "success",
		"message":  "Added 5 units Shirt size M",
		"quantity": float64(15),
	}, resp.body)

	resp = doJSON(t, app, http.MethodPost, "/admin/clothing/", map[string]any{
		"name": "Shirt", "size": "XXXXL", "quantity": 0,
	}, admin)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)

	resp = doJSON(t, app, http.MethodGet, "/clothing/", nil, roma)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, []any{map[string]any{"name": "Shirt"}}, resp.body)

	resp = doJSON(t, app, http.MethodGet, "/clothing/Shirt/sizes/", nil, roma)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, []any{map[string]any{"size": "M", "quantity": float64(15)}}, resp.body)

	resp = doJSON(t, app, http.MethodGet, "/clothing/shirt/sizes/", nil, roma)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)

	resp = doJSON(t, app, http.MethodGet, "/clothing/Boots/sizes/", nil, roma)
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "Clothing with name Boots not found", resp.object(t)["detail"])

	// Place an order
	resp = doJSON(t, app, http.MethodPost, "/orders/", map[string]string{"name": "shirt", "size": "m"}, roma)
	require.Equal(t, http.StatusOK, resp.status, resp.body)
	assert.Equal(t, map[string]any{"name": "Shirt", "size": "M"}, resp.body)

	resp = doJSON(t, app, http.MethodGet, "/clothing/Shirt/sizes/", nil, roma)
	assert.Equal(t, []any{map[string]any{"size": "M", "quantity": float64(14)}}, resp.body)

	resp = doJSON(t, app, http.MethodPost, "/orders/", map[string]string{"name": "Shirt", "size": "M"}, roma)
	assert.Equal(t, http.StatusConflict, resp.status)
	assert.Equal(t, "You have already ordered Shirt", resp.object(t)["detail"])

	resp = doJSON(t, app, http.MethodPost, "/orders/", map[string]string{"name": "Boots", "size": "M"}, roma)
	assert.Equal(t, http.StatusNotFound, resp.status)

	resp = doJSON(t, app, http.MethodPost, "/orders/", map[string]string{"name": "Shirt", "size": "Q"}, roma)
	assert.Equal(t, http.StatusBadRequest, resp.status)

	resp = doJSON(t, app, http.MethodPost, "/orders/", map[string]string{"name": "Shirt", "size": "XL"}, admin)
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "The Shirt size XL are out of stock", resp.object(t)["detail"])

	// Admin views and deletes orders
	resp = doJSON(t, app, http.MethodGet, "/admin/orders/roma@example.com/", nil, admin)
	require.Equal(t, http.StatusOK, resp.status)
	orders := resp.list(t)
	require.Len(t, orders, 1)
	assert.Equal(t, map[string]any{
		"name_user":     "Roma",
		"birthdate":     "2000-01-30",
		"email_user":    "roma@example.com",
		"name_clothing": "Shirt",
		"size":          "M",
	}, orders[0])

	resp = doJSON(t, app, http.MethodGet, "/admin/orders/nobody@example.com/", nil, admin)
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "The user with email nobody@example.com has no orders", resp.object(t)["detail"])

	resp = doJSON(t, app, http.MethodDelete, "/admin/orders/?email=roma@example.com&name=Shirt", nil, admin)
	assert.Equal(t, http.StatusOK, resp.status)
	resp = doJSON(t, app, http.MethodDelete, "/admin/orders/?email=roma@example.com&name=Shirt", nil, admin)
	assert.Equal(t, http.StatusConflict, resp.status)
	assert.Equal(t, "The user with email address roma@example.com does not have an order for the Shirt", resp.object(t)["detail"])

	// Admin deletes clothing
	resp = doJSON(t, app, http.MethodDelete, "/admin/clothing/?name=Shirt", nil, admin)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, map[string]any{"name": "Shirt"}, resp.body)
	resp = doJSON(t, app, http.MethodDelete, "/admin/clothing/?name=Shirt", nil, admin)
	assert.Equal(t, http.StatusNotFound, resp.status)
}

func TestAdminUsers(t *testing.T) {
	app := setupApp(t)
	admin := login(t, app, adminEmail, adminPassword)
	roma := registerRoma(t, app)

	resp := doJSON(t, app, http.MethodGet, "/admin/users/", nil, admin)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Len(t, resp.list(t), 2)

	resp = doJSON(t, app, http.MethodDelete, "/admin/users/?email=roma@example.com", nil, admin)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "roma@example.com", resp.object(t)["email"])

	resp = doJSON(t, app, http.MethodDelete, "/admin/users/?email=roma@example.com", nil, admin)
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "User with email roma@example.com not found", resp.object(t)["detail"])

	resp = doJSON(t, app, http.MethodDelete, "/admin/users/?email=not-an-email", nil, admin)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)

	// The deleted user's token no longer works.
	resp = doJSON(t, app, http.MethodGet, "/auth/users/me/", nil, roma)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
}
