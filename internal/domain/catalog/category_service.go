// internal/domain/catalog/category_service.go
package catalog

import (
	"github.com/ivan22102000/kivo-tienda/internal/config"
	"github.com/ivan22102000/kivo-tienda/internal/pkg/apperror"
	"gorm.io/gorm"
)

// CategoryService handles category business logic
type CategoryService struct {
	db     *gorm.DB
	config *config.Config
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB, cfg *config.Config) *CategoryService {
	return &CategoryService{
		db:     db,
		config: cfg,
	}
}

// CategoryCreateRequest represents category creation data
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// GetCategories retrieves all categories
func (s *CategoryService) GetCategories() ([]Category, error) {
	var categories []Category

	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperror.Internal("failed to retrieve categories", err)
	}

	return categories, nil
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(req *CategoryCreateRequest) (*Category, error) {
	category := Category{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	}

	if err := s.db.Create(&category).Error; err != nil {
		return nil, apperror.Internal("failed to create category", err)
	}

	return &category, nil
}
