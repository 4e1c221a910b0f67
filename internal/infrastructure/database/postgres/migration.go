// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"
	"log"

	"github.com/ivan22102000/kivo-tienda/internal/domain/cart"
	"github.com/ivan22102000/kivo-tienda/internal/domain/catalog"
	"github.com/ivan22102000/kivo-tienda/internal/domain/order"
	"github.com/ivan22102000/kivo-tienda/internal/domain/user"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// Models returns every model that needs migration, in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&catalog.Category{},
		&catalog.Product{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	if err := m.db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	log.Println("✅ Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes not covered by model tags
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_user_product ON cart_items (user_id, product_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)",
	}

	for _, idx := range indexes {
		if err := m.db.Exec(idx).Error; err != nil {
			return fmt.Errorf("index creation failed: %w", err)
		}
	}

	return nil
}

// SeedInitialData seeds an admin account and a starter catalog for
// development environments. Seeding is skipped when users already exist.
func (m *Migration) SeedInitialData() error {
	var existing user.User
	err := m.db.First(&existing).Error
	if err == nil {
		return nil // Already seeded
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("seed check failed: %w", err)
	}

	log.Println("🌱 Seeding initial data...")

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	admin := user.User{
		Username: "admin",
		Email:    "admin@kivo-tienda.local",
		Password: string(hashed),
		IsAdmin:  true,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	categories := []catalog.Category{
		{Name: "Electrónica", Description: "Teléfonos, audio y accesorios", Icon: "cpu"},
		{Name: "Hogar", Description: "Artículos para el hogar", Icon: "home"},
		{Name: "Ropa", Description: "Moda y textiles", Icon: "shirt"},
	}
	if err := m.db.Create(&categories).Error; err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	products := []catalog.Product{
		{
			Name:        "Auriculares inalámbricos",
			Description: "Auriculares Bluetooth con cancelación de ruido",
			Price:       decimal.NewFromFloat(59.99),
			Image:       "https://example.com/images/headphones.jpg",
			CategoryID:  &categories[0].ID,
			Stock:       25,
		},
		{
			Name:        "Lámpara de escritorio",
			Description: "Lámpara LED regulable",
			Price:       decimal.NewFromFloat(24.50),
			Image:       "https://example.com/images/lamp.jpg",
			CategoryID:  &categories[1].ID,
			Stock:       40,
		},
		{
			Name:        "Camiseta básica",
			Description: "Camiseta de algodón, varios colores",
			Price:       decimal.NewFromFloat(12.00),
			Image:       "https://example.com/images/tshirt.jpg",
			CategoryID:  &categories[2].ID,
			Stock:       100,
		},
	}
	if err := m.db.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	log.Println("✅ Initial data seeded")
	return nil
}
