package storeclient_test

import (
	"context"
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
	apihttp "github.com/ivan22102000/kivo-tienda/internal/interfaces/http"
	"github.com/ivan22102000/kivo-tienda/pkg/storeclient"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func startTestAPI(t *testing.T) (*httptest.Server, *gorm.DB) {
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

	cfg := &config.Config{
		App: config.AppConfig{Name: "test-app", Environment: "test"},
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

	srv := apihttp.NewServer(cfg, db, nil, nil)
	ts := httptest.NewServer(srv.BuildRouter())
	t.Cleanup(ts.Close)
	return ts, db
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string) *catalog.Product {
	t.Helper()
	product := &catalog.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: 10,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestSessionLifecycle(t *testing.T) {
	ts, _ := startTestAPI(t)
	ctx := context.Background()

	client := storeclient.NewClient(ts.URL)
	session := storeclient.NewSessionStore(client)

	assert.Empty(t, session.Token())
	assert.Nil(t, session.CachedUser())

	registered, err := session.Register(ctx, "maria", "maria@example.com", "secret123", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "maria", registered.Username)
	assert.NotEmpty(t, session.Token())

	current, err := session.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, current.ID)

	require.NoError(t, session.Logout(ctx))
	assert.Empty(t, session.Token())
	assert.Nil(t, session.CachedUser())

	_, err = session.CurrentUser(ctx)
	require.Error(t, err)

	// The account persists; a fresh login works
	logged, err := session.Login(ctx, "maria", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, logged.ID)
}

func TestLoginFailureSurfacesAPIError(t *testing.T) {
	ts, _ := startTestAPI(t)

	session := storeclient.NewSessionStore(storeclient.NewClient(ts.URL))
	_, err := session.Login(context.Background(), "nobody", "wrong")
	require.Error(t, err)

	var apiErr *storeclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.Message)
}

func TestCartStoreDerivesTotals(t *testing.T) {
	ts, db := startTestAPI(t)
	ctx := context.Background()

	keyboard := seedProduct(t, db, "Keyboard", "100.00")
	cable := seedProduct(t, db, "Cable", "19.99")

	client := storeclient.NewClient(ts.URL)
	session := storeclient.NewSessionStore(client)
	_, err := session.Register(ctx, "maria", "maria@example.com", "secret123", "secret123")
	require.NoError(t, err)

	cartStore := storeclient.NewCartStore(client, session)
	require.NoError(t, cartStore.Refresh(ctx))
	assert.Zero(t, cartStore.Count())
	assert.True(t, cartStore.Total().IsZero())

	require.NoError(t, cartStore.Add(ctx, keyboard.ID, 2))
	require.NoError(t, cartStore.Add(ctx, keyboard.ID, 1))
	require.NoError(t, cartStore.Add(ctx, cable.ID, 2))

	// Same product merges into one row
	items := cartStore.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 5, cartStore.Count())
	assert.True(t, cartStore.Total().Equal(decimal.RequireFromString("339.98")),
		"expected 339.98, got %s", cartStore.Total())

	// Drop the cable line
	var cableItem storeclient.CartItem
	for _, item := range items {
		if item.ProductID == cable.ID {
			cableItem = item
		}
	}
	require.NotZero(t, cableItem.ID)
	require.NoError(t, cartStore.Remove(ctx, cableItem.ID))
	assert.Equal(t, 3, cartStore.Count())
	assert.True(t, cartStore.Total().Equal(decimal.RequireFromString("300")))

	require.NoError(t, cartStore.Clear(ctx))
	assert.Zero(t, cartStore.Count())
}

func TestCheckoutThroughClient(t *testing.T) {
	ts, db := startTestAPI(t)
	ctx := context.Background()

	keyboard := seedProduct(t, db, "Keyboard", "100.00")

	client := storeclient.NewClient(ts.URL)
	session := storeclient.NewSessionStore(client)
	_, err := session.Register(ctx, "maria", "maria@example.com", "secret123", "secret123")
	require.NoError(t, err)

	cartStore := storeclient.NewCartStore(client, session)
	require.NoError(t, cartStore.Add(ctx, keyboard.ID, 3))

	created, err := cartStore.Checkout(ctx, "Maria Lopez", "maria@example.com", "", "Calle Mayor 1, Madrid")
	require.NoError(t, err)
	assert.True(t, created.Total.Equal(decimal.RequireFromString("300")))
	assert.Equal(t, "pending", created.Status)
	require.Len(t, created.Items, 1)
	assert.Equal(t, 3, created.Items[0].Quantity)

	// The cart store reflects the now empty server cart
	assert.Zero(t, cartStore.Count())

	// Checking out again with nothing in the cart fails
	_, err = cartStore.Checkout(ctx, "Maria Lopez", "maria@example.com", "", "Calle Mayor 1, Madrid")
	var apiErr *storeclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestPublicCatalogWithoutSession(t *testing.T) {
	ts, db := startTestAPI(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&catalog.Category{Name: "Peripherals"}).Error)
	seedProduct(t, db, "Keyboard", "100.00")

	client := storeclient.NewClient(ts.URL)

	categories, err := client.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)

	products, err := client.GetProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("100.00")))
}
