// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/ivan22102000/kivo-tienda/internal/config"
	"github.com/ivan22102000/kivo-tienda/internal/interfaces/http/handlers"
	"github.com/ivan22102000/kivo-tienda/internal/interfaces/http/middleware"
	"github.com/ivan22102000/kivo-tienda/internal/pkg/events"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes wires every route group under the API prefix
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, producer *events.Producer) {
	SetupAuthRoutes(rg, db, redisClient, cfg)
	SetupCategoryRoutes(rg, db, redisClient, cfg)
	SetupProductRoutes(rg, db, redisClient, cfg)
	SetupCartRoutes(rg, db, redisClient, cfg)
	SetupOrderRoutes(rg, db, redisClient, cfg, producer)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg, redisClient)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg, db, redisClient))
		{
			protected.GET("/me", authHandler.Me)
			protected.POST("/logout", authHandler.Logout)
		}
	}
}

// SetupCategoryRoutes sets up category related routes
func SetupCategoryRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	categoryHandler := handlers.NewCategoryHandler(db, cfg)

	categories := rg.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategories)

		// Admin only
		admin := categories.Group("")
		admin.Use(middleware.AuthMiddleware(cfg, db, redisClient), middleware.AdminMiddleware())
		{
			admin.POST("", categoryHandler.CreateCategory)
		}
	}
}

// SetupProductRoutes sets up product related routes
func SetupProductRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)

		// Admin only
		admin := products.Group("")
		admin.Use(middleware.AuthMiddleware(cfg, db, redisClient), middleware.AdminMiddleware())
		{
			admin.POST("", productHandler.CreateProduct)
			admin.PATCH("/:id", productHandler.UpdateProduct)
			admin.DELETE("/:id", productHandler.DeleteProduct)
		}
	}
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg, db, redisClient)) // All cart routes require authentication
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("", cartHandler.AddToCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.PATCH("/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/:id", cartHandler.RemoveFromCart)
	}
}

// SetupOrderRoutes sets up order related routes
func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, producer *events.Producer) {
	orderHandler := handlers.NewOrderHandler(db, cfg, producer)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg, db, redisClient)) // All order routes require authentication
	{
		orders.GET("", orderHandler.GetOrders)
		orders.POST("", orderHandler.CreateOrder)

		// Admin only
		admin := orders.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.PATCH("/:id", orderHandler.UpdateOrderStatus)
		}
	}
}
