// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/ivan22102000/kivo-tienda/internal/config"
	"github.com/ivan22102000/kivo-tienda/internal/domain/cart"
	"github.com/ivan22102000/kivo-tienda/internal/domain/catalog"
	"github.com/ivan22102000/kivo-tienda/internal/pkg/apperror"
	"github.com/ivan22102000/kivo-tienda/internal/pkg/events"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service handles order business logic
type Service struct {
	db       *gorm.DB
	config   *config.Config
	producer *events.Producer
	logger   *logrus.Logger
}

// NewService creates a new order service. producer may be nil when event
// publishing is not configured.
func NewService(db *gorm.DB, cfg *config.Config, producer *events.Producer) *Service {
	return &Service{
		db:       db,
		config:   cfg,
		producer: producer,
		logger:   logrus.StandardLogger(),
	}
}

// CreateOrderRequest represents checkout data
type CreateOrderRequest struct {
	CustomerName    string `json:"customerName" binding:"required"`
	CustomerEmail   string `json:"customerEmail" binding:"required,email"`
	CustomerPhone   string `json:"customerPhone"`
	ShippingAddress string `json:"shippingAddress" binding:"required"`
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderCreatedEvent is published after a successful checkout
type OrderCreatedEvent struct {
	OrderID   uint      `json:"order_id"`
	UserID    uint      `json:"user_id"`
	Total     string    `json:"total"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
}

// GetOrdersForUser retrieves orders belonging to one user
func (s *Service) GetOrdersForUser(userID uint) ([]Order, error) {
	var orders []Order
	err := s.db.Preload("Items").Where("user_id = ?", userID).Order("id DESC").Find(&orders).Error
	if err != nil {
		return nil, apperror.Internal("failed to retrieve orders", err)
	}
	return orders, nil
}

// GetAllOrders retrieves every order (admin view)
func (s *Service) GetAllOrders() ([]Order, error) {
	var orders []Order
	err := s.db.Preload("Items").Order("id DESC").Find(&orders).Error
	if err != nil {
		return nil, apperror.Internal("failed to retrieve orders", err)
	}
	return orders, nil
}

// CreateOrder builds an order from the user's current cart. The whole
// sequence runs in one transaction: the order and its items are persisted
// and the cart cleared, or nothing happens at all. A cart line whose product
// no longer exists aborts the order rather than being silently skipped.
func (s *Service) CreateOrder(ctx context.Context, userID uint, req *CreateOrderRequest) (*Order, error) {
	var created Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cartItems []cart.CartItem
		if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&cartItems).Error; err != nil {
			return apperror.Internal("failed to retrieve cart", err)
		}

		if len(cartItems) == 0 {
			return apperror.Validation("cart is empty")
		}

		total := decimal.Zero
		orderItems := make([]OrderItem, 0, len(cartItems))

		for _, item := range cartItems {
			var product catalog.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.NotFound("product %d is no longer available", item.ProductID)
				}
				return apperror.Internal("failed to retrieve product", err)
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			orderItems = append(orderItems, OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     product.Price,
			})
		}

		created = Order{
			UserID:          userID,
			Total:           total,
			CustomerName:    req.CustomerName,
			CustomerEmail:   req.CustomerEmail,
			CustomerPhone:   req.CustomerPhone,
			ShippingAddress: req.ShippingAddress,
			Status:          OrderStatusPending,
		}
		if err := tx.Create(&created).Error; err != nil {
			return apperror.Internal("failed to create order", err)
		}

		for i := range orderItems {
			orderItems[i].OrderID = created.ID
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return apperror.Internal("failed to create order items", err)
		}
		created.Items = orderItems

		if err := tx.Where("user_id = ?", userID).Delete(&cart.CartItem{}).Error; err != nil {
			return apperror.Internal("failed to clear cart", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderCreated(ctx, &created)

	return &created, nil
}

// UpdateStatus changes an order's status (admin only)
func (s *Service) UpdateStatus(id uint, status string) (*Order, error) {
	if !ValidStatus(status) {
		return nil, apperror.Validation("invalid order status %q", status)
	}

	var order Order
	result := s.db.Preload("Items").First(&order, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order not found")
		}
		return nil, apperror.Internal("failed to retrieve order", result.Error)
	}

	order.Status = OrderStatus(status)
	if err := s.db.Save(&order).Error; err != nil {
		return nil, apperror.Internal("failed to update order", err)
	}

	return &order, nil
}

func (s *Service) publishOrderCreated(ctx context.Context, o *Order) {
	event := OrderCreatedEvent{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Total:     o.Total.String(),
		ItemCount: len(o.Items),
		CreatedAt: o.CreatedAt,
	}

	// The order is already committed; a publish failure must not fail the
	// request.
	if err := s.producer.PublishEvent(ctx, strconv.FormatUint(uint64(o.ID), 10), event); err != nil {
		s.logger.WithError(err).WithField("order_id", o.ID).Warn("failed to publish order created event")
	}
}
