package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/ivan22102000/kivo-tienda/internal/config"
	"github.com/ivan22102000/kivo-tienda/internal/domain/cart"
	"github.com/ivan22102000/kivo-tienda/internal/domain/catalog"
	"github.com/ivan22102000/kivo-tienda/internal/domain/order"
	"github.com/ivan22102000/kivo-tienda/internal/domain/user"
	"github.com/ivan22102000/kivo-tienda/internal/pkg/auth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-app",
			Environment: "test",
		},
		Server: config.ServerConfig{Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "test-secret-key-that-is-long-enough-123",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost:         4,
			RateLimitPerMinute: 1000,
			CORSAllowedOrigins: []string{"*"},
			CORSAllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			CORSAllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		},
	}
}

// newTestRouter builds the full router backed by an in-memory database, with
// one seeded admin account (admin / admin123).
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&catalog.Category{},
		&catalog.Product{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
	))

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), 4)
	require.NoError(t, err)
	require.NoError(t, db.Create(&user.User{
		Username: "admin",
		Email:    "admin@example.com",
		Password: string(hash),
		IsAdmin:  true,
	}).Error)

	srv := NewServer(testConfig(), db, nil, nil)
	return srv.BuildRouter(), db
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func loginAs(t *testing.T, router *gin.Engine, username, password string) string {
	t.Helper()

	w := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func registerUser(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	w := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":        username,
		"email":           username + "@example.com",
		"password":        "secret123",
		"confirmPassword": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterLoginMe(t *testing.T) {
	router, _ := newTestRouter(t)

	token := registerUser(t, router, "maria")

	w := doRequest(t, router, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		Username string `json:"username"`
		IsAdmin  bool   `json:"is_admin"`
	}
	decodeBody(t, w, &me)
	assert.Equal(t, "maria", me.Username)
	assert.False(t, me.IsAdmin)

	// Password hash never leaves the server
	assert.NotContains(t, w.Body.String(), "password")

	loginAs(t, router, "maria", "secret123")
}

func TestRegisterDuplicateReturnsConflict(t *testing.T) {
	router, _ := newTestRouter(t)
	registerUser(t, router, "maria")

	w := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":        "maria",
		"email":           "elsewhere@example.com",
		"password":        "secret123",
		"confirmPassword": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	// Missing email
	w := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "maria",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Malformed email
	w = doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "maria",
		"email":    "not-an-email",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthenticationPrecedesValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	// Garbage body, but no token: 401 wins over 400
	w := doRequest(t, router, http.MethodPost, "/api/cart", "", map[string]string{"nonsense": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/cart", "not-a-real-token", map[string]string{"nonsense": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnlyRoutes(t *testing.T) {
	router, db := newTestRouter(t)
	userToken := registerUser(t, router, "maria")
	adminToken := loginAs(t, router, "admin", "admin123")

	// Non-admin is rejected and nothing is written
	w := doRequest(t, router, http.MethodPost, "/api/categories", userToken, map[string]string{"name": "Audio"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	require.NoError(t, db.Model(&catalog.Category{}).Count(&count).Error)
	assert.Zero(t, count)

	// Admin succeeds
	w = doRequest(t, router, http.MethodPost, "/api/categories", adminToken, map[string]string{"name": "Audio"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Reads stay public
	w = doRequest(t, router, http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProductAdminCRUD(t *testing.T) {
	router, _ := newTestRouter(t)
	adminToken := loginAs(t, router, "admin", "admin123")

	w := doRequest(t, router, http.MethodPost, "/api/categories", adminToken, map[string]string{"name": "Peripherals"})
	require.Equal(t, http.StatusCreated, w.Code)
	var category struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &category)

	w = doRequest(t, router, http.MethodPost, "/api/products", adminToken, map[string]interface{}{
		"name":        "Keyboard",
		"description": "Tenkeyless",
		"price":       "89.99",
		"image":       "https://cdn.example.com/keyboard.jpg",
		"categoryId":  category.ID,
		"stock":       "15",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product struct {
		ID    uint            `json:"id"`
		Price decimal.Decimal `json:"price"`
	}
	decodeBody(t, w, &product)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("89.99")))

	w = doRequest(t, router, http.MethodPatch, "/api/products/1", adminToken, map[string]string{"price": "79.99"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/api/products/1", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/products/1", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStorefrontScenario(t *testing.T) {
	router, db := newTestRouter(t)
	adminToken := loginAs(t, router, "admin", "admin123")

	w := doRequest(t, router, http.MethodPost, "/api/products", adminToken, map[string]interface{}{
		"name":        "Keyboard",
		"description": "Tenkeyless",
		"price":       "100.00",
		"image":       "https://cdn.example.com/keyboard.jpg",
		"categoryId":  1,
		"stock":       "15",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &product)

	userToken := registerUser(t, router, "maria")

	// Two adds of the same product merge into one row
	w = doRequest(t, router, http.MethodPost, "/api/cart", userToken, map[string]interface{}{
		"productId": product.ID,
		"quantity":  2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, router, http.MethodPost, "/api/cart", userToken, map[string]interface{}{
		"productId": product.ID,
		"quantity":  1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/cart", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []struct {
		ID       uint `json:"id"`
		Quantity int  `json:"quantity"`
	}
	decodeBody(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	// Checkout
	w = doRequest(t, router, http.MethodPost, "/api/orders", userToken, map[string]string{
		"customerName":    "Maria Lopez",
		"customerEmail":   "maria@example.com",
		"shippingAddress": "Calle Mayor 1, Madrid",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID     uint            `json:"id"`
		Total  decimal.Decimal `json:"total"`
		Status string          `json:"status"`
	}
	decodeBody(t, w, &created)
	assert.True(t, created.Total.Equal(decimal.RequireFromString("300")),
		"expected total 300, got %s", created.Total)
	assert.Equal(t, "pending", created.Status)

	// Cart is empty afterwards
	var remaining int64
	require.NoError(t, db.Model(&cart.CartItem{}).Count(&remaining).Error)
	assert.Zero(t, remaining)

	// Empty cart cannot be checked out again
	w = doRequest(t, router, http.MethodPost, "/api/orders", userToken, map[string]string{
		"customerName":    "Maria Lopez",
		"customerEmail":   "maria@example.com",
		"shippingAddress": "Calle Mayor 1, Madrid",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderVisibilityAndStatus(t *testing.T) {
	router, db := newTestRouter(t)
	adminToken := loginAs(t, router, "admin", "admin123")

	require.NoError(t, db.Create(&catalog.Product{
		Name:  "Keyboard",
		Price: decimal.RequireFromString("50.00"),
		Stock: 5,
	}).Error)

	mariaToken := registerUser(t, router, "maria")
	pedroToken := registerUser(t, router, "pedro")

	w := doRequest(t, router, http.MethodPost, "/api/cart", mariaToken, map[string]interface{}{"productId": 1})
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, router, http.MethodPost, "/api/orders", mariaToken, map[string]string{
		"customerName":    "Maria Lopez",
		"customerEmail":   "maria@example.com",
		"shippingAddress": "Calle Mayor 1, Madrid",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &created)

	// Pedro sees no orders, Maria sees hers, admin sees all
	w = doRequest(t, router, http.MethodGet, "/api/orders", pedroToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pedroOrders []json.RawMessage
	decodeBody(t, w, &pedroOrders)
	assert.Empty(t, pedroOrders)

	w = doRequest(t, router, http.MethodGet, "/api/orders", mariaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mariaOrders []json.RawMessage
	decodeBody(t, w, &mariaOrders)
	assert.Len(t, mariaOrders, 1)

	w = doRequest(t, router, http.MethodGet, "/api/orders", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var allOrders []json.RawMessage
	decodeBody(t, w, &allOrders)
	assert.Len(t, allOrders, 1)

	// Only admins may change status
	w = doRequest(t, router, http.MethodPatch, "/api/orders/1", mariaToken, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, router, http.MethodPatch, "/api/orders/1", adminToken, map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodPatch, "/api/orders/1", adminToken, map[string]string{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartClearIsIdempotentOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerUser(t, router, "maria")

	w := doRequest(t, router, http.MethodDelete, "/api/cart", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/api/cart", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	cfg := testConfig()
	cfg.JWT.AccessTokenExpiry = -time.Hour
	expired, err := auth.NewJWTManager(cfg).GenerateAccessToken(1, "admin", true)
	require.NoError(t, err)

	w := doRequest(t, router, http.MethodGet, "/api/auth/me", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
