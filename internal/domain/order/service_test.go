package order

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/ivan22102000/kivo-tienda/internal/config"
	"github.com/ivan22102000/kivo-tienda/internal/domain/cart"
	"github.com/ivan22102000/kivo-tienda/internal/domain/catalog"
	"github.com/ivan22102000/kivo-tienda/internal/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalog.Category{},
		&catalog.Product{},
		&cart.CartItem{},
		&Order{},
		&OrderItem{},
	))

	return db
}

func createProduct(t *testing.T, db *gorm.DB, name, price string) *catalog.Product {
	t.Helper()

	product := &catalog.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: 10,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func addToCart(t *testing.T, db *gorm.DB, userID, productID uint, quantity int) {
	t.Helper()
	require.NoError(t, db.Create(&cart.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}).Error)
}

func checkoutRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		CustomerName:    "Maria Lopez",
		CustomerEmail:   "maria@example.com",
		CustomerPhone:   "+34 600 000 000",
		ShippingAddress: "Calle Mayor 1, Madrid",
	}
}

func TestCreateOrderComputesTotalAndClearsCart(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &config.Config{}, nil)

	keyboard := createProduct(t, db, "Keyboard", "100.00")
	cable := createProduct(t, db, "Cable", "19.99")
	addToCart(t, db, 1, keyboard.ID, 3)
	addToCart(t, db, 1, cable.ID, 2)

	created, err := service.CreateOrder(context.Background(), 1, checkoutRequest())
	require.NoError(t, err)

	assert.True(t, created.Total.Equal(decimal.RequireFromString("339.98")),
		"expected 339.98, got %s", created.Total)
	assert.Equal(t, OrderStatusPending, created.Status)
	require.Len(t, created.Items, 2)
	assert.True(t, created.Items[0].Price.Equal(keyboard.Price))
	assert.Equal(t, 3, created.Items[0].Quantity)

	// Checkout empties the cart
	var remaining int64
	require.NoError(t, db.Model(&cart.CartItem{}).Where("user_id = ?", 1).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	service := NewService(setupTestDB(t), &config.Config{}, nil)

	_, err := service.CreateOrder(context.Background(), 1, checkoutRequest())
	require.Error(t, err)
	assert.Equal(t, 400, apperror.HTTPStatus(err))
}

func TestCreateOrderMissingProductAborts(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &config.Config{}, nil)

	product := createProduct(t, db, "Keyboard", "100.00")
	addToCart(t, db, 1, product.ID, 1)
	addToCart(t, db, 1, 999, 1) // product no longer exists

	_, err := service.CreateOrder(context.Background(), 1, checkoutRequest())
	require.Error(t, err)
	assert.Equal(t, 404, apperror.HTTPStatus(err))

	// The whole transaction rolled back: no order, cart untouched
	var orders int64
	require.NoError(t, db.Model(&Order{}).Count(&orders).Error)
	assert.Zero(t, orders)

	var cartRows int64
	require.NoError(t, db.Model(&cart.CartItem{}).Where("user_id = ?", 1).Count(&cartRows).Error)
	assert.Equal(t, int64(2), cartRows)
}

func TestOrderPriceFrozenAfterProductChange(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &config.Config{}, nil)

	product := createProduct(t, db, "Keyboard", "100.00")
	addToCart(t, db, 1, product.ID, 2)

	created, err := service.CreateOrder(context.Background(), 1, checkoutRequest())
	require.NoError(t, err)

	// Raising the price later must not change the recorded order
	require.NoError(t, db.Model(&catalog.Product{}).
		Where("id = ?", product.ID).
		Update("price", decimal.RequireFromString("999.99")).Error)

	orders, err := service.GetOrdersForUser(1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].Total.Equal(decimal.RequireFromString("200.00")))
	require.Len(t, orders[0].Items, 1)
	assert.True(t, orders[0].Items[0].Price.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, created.ID, orders[0].ID)
}

func TestGetOrdersScopedToUser(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &config.Config{}, nil)

	product := createProduct(t, db, "Keyboard", "100.00")
	addToCart(t, db, 1, product.ID, 1)
	_, err := service.CreateOrder(context.Background(), 1, checkoutRequest())
	require.NoError(t, err)

	addToCart(t, db, 2, product.ID, 1)
	_, err = service.CreateOrder(context.Background(), 2, checkoutRequest())
	require.NoError(t, err)

	mine, err := service.GetOrdersForUser(1)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := service.GetAllOrders()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &config.Config{}, nil)

	product := createProduct(t, db, "Keyboard", "100.00")
	addToCart(t, db, 1, product.ID, 1)
	created, err := service.CreateOrder(context.Background(), 1, checkoutRequest())
	require.NoError(t, err)

	updated, err := service.UpdateStatus(created.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, updated.Status)
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	service := NewService(setupTestDB(t), &config.Config{}, nil)

	_, err := service.UpdateStatus(1, "teleported")
	require.Error(t, err)
	assert.Equal(t, 400, apperror.HTTPStatus(err))
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	service := NewService(setupTestDB(t), &config.Config{}, nil)

	_, err := service.UpdateStatus(999, "shipped")
	require.Error(t, err)
	assert.Equal(t, 404, apperror.HTTPStatus(err))
}
