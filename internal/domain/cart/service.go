// internal/domain/cart/service.go
package cart

import (
	"errors"

	"github.com/ivan22102000/kivo-tienda/internal/config"
	"github.com/ivan22102000/kivo-tienda/internal/domain/catalog"
	"github.com/ivan22102000/kivo-tienda/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service handles cart business logic. Every operation is scoped to the
// owning user.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"omitempty,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GetItems retrieves the user's cart rows
func (s *Service) GetItems(userID uint) ([]CartItem, error) {
	var items []CartItem
	if err := s.db.Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, apperror.Internal("failed to retrieve cart", err)
	}
	return items, nil
}

// AddItem adds a product to the user's cart. If the product is already in
// the cart its quantity is incremented; a second row is never created.
func (s *Service) AddItem(userID uint, req *AddToCartRequest) (*CartItem, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	var product catalog.Product
	if err := s.db.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product not found")
		}
		return nil, apperror.Internal("failed to retrieve product", err)
	}

	var existing CartItem
	result := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existing)
	if result.Error == nil {
		existing.Quantity += quantity
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, apperror.Internal("failed to update cart item", err)
		}
		return &existing, nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal("failed to retrieve cart item", result.Error)
	}

	item := CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  quantity,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, apperror.Internal("failed to add cart item", err)
	}

	return &item, nil
}

// UpdateItemQuantity sets the quantity of one of the user's cart rows
func (s *Service) UpdateItemQuantity(userID, itemID uint, quantity int) (*CartItem, error) {
	item, err := s.getOwnedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	item.Quantity = quantity
	if err := s.db.Save(item).Error; err != nil {
		return nil, apperror.Internal("failed to update cart item", err)
	}

	return item, nil
}

// RemoveItem deletes one of the user's cart rows
func (s *Service) RemoveItem(userID, itemID uint) error {
	item, err := s.getOwnedItem(userID, itemID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(item).Error; err != nil {
		return apperror.Internal("failed to remove cart item", err)
	}
	return nil
}

// Clear removes all of the user's cart rows. Clearing an already-empty cart
// succeeds.
func (s *Service) Clear(userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return apperror.Internal("failed to clear cart", err)
	}
	return nil
}

func (s *Service) getOwnedItem(userID, itemID uint) (*CartItem, error) {
	var item CartItem
	result := s.db.Where("id = ? AND user_id = ?", itemID, userID).First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("cart item not found")
		}
		return nil, apperror.Internal("failed to retrieve cart item", result.Error)
	}
	return &item, nil
}
