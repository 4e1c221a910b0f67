// internal/domain/catalog/service.go
package catalog

import (
	"errors"
	"strconv"

	"github.com/ivan22102000/kivo-tienda/internal/config"
	"github.com/ivan22102000/kivo-tienda/internal/pkg/apperror"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductCreateRequest represents product creation data. Price and stock
// arrive as text from form inputs and are parsed before storage.
type ProductCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Price       string `json:"price" binding:"required"`
	Image       string `json:"image" binding:"required"`
	CategoryID  *uint  `json:"categoryId" binding:"required"`
	Stock       string `json:"stock" binding:"required"`
}

// ProductUpdateRequest represents a partial product update
type ProductUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Image       *string `json:"image"`
	CategoryID  *uint   `json:"categoryId"`
	Stock       *string `json:"stock"`
}

// GetProducts retrieves all products, optionally filtered by category
func (s *Service) GetProducts(categoryID *uint) ([]Product, error) {
	var products []Product

	query := s.db.Order("name ASC")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	if err := query.Find(&products).Error; err != nil {
		return nil, apperror.Internal("failed to retrieve products", err)
	}

	return products, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	result := s.db.First(&product, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product not found")
		}
		return nil, apperror.Internal("failed to retrieve product", result.Error)
	}
	return &product, nil
}

// CreateProduct creates a new product
func (s *Service) CreateProduct(req *ProductCreateRequest) (*Product, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	stock, err := parseStock(req.Stock)
	if err != nil {
		return nil, err
	}

	product := Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Image:       req.Image,
		CategoryID:  req.CategoryID,
		Stock:       stock,
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, apperror.Internal("failed to create product", err)
	}

	return &product, nil
}

// UpdateProduct merges the given fields into an existing product
func (s *Service) UpdateProduct(id uint, req *ProductUpdateRequest) (*Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		product.Price = price
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.Stock != nil {
		stock, err := parseStock(*req.Stock)
		if err != nil {
			return nil, err
		}
		product.Stock = stock
	}

	if err := s.db.Save(product).Error; err != nil {
		return nil, apperror.Internal("failed to update product", err)
	}

	return product, nil
}

// DeleteProduct removes a product. Cart rows and category references are
// left untouched; readers tolerate the dangling product id.
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return apperror.Internal("failed to delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product not found")
	}
	return nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.Validation("invalid price %q", raw)
	}
	if price.IsNegative() {
		return decimal.Zero, apperror.Validation("price cannot be negative")
	}
	return price, nil
}

func parseStock(raw string) (int, error) {
	stock, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("invalid stock %q", raw)
	}
	if stock < 0 {
		return 0, apperror.Validation("stock cannot be negative")
	}
	return stock, nil
}
