package storeclient

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
)

// CartStore mirrors the caller's server-side cart. Every mutation calls the
// API and then refetches the cart and the product catalog, so the local copy
// is always whatever the server last returned. Totals and counts are derived
// on demand, never stored.
type CartStore struct {
	client  *Client
	session *SessionStore

	mu       sync.RWMutex
	items    []CartItem
	products map[uint]Product
}

func NewCartStore(client *Client, session *SessionStore) *CartStore {
	return &CartStore{
		client:   client,
		session:  session,
		products: make(map[uint]Product),
	}
}

// Refresh pulls the cart and the product catalog from the server.
func (cs *CartStore) Refresh(ctx context.Context) error {
	token := cs.session.Token()
	if token == "" {
		return &APIError{StatusCode: http.StatusUnauthorized, Message: "not logged in"}
	}

	var items []CartItem
	if err := cs.client.do(ctx, http.MethodGet, "/api/cart", token, nil, &items); err != nil {
		return err
	}

	products, err := cs.client.GetProducts(ctx)
	if err != nil {
		return err
	}

	byID := make(map[uint]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	cs.mu.Lock()
	cs.items = items
	cs.products = byID
	cs.mu.Unlock()
	return nil
}

// Add puts quantity units of a product in the cart. The server merges into an
// existing row when the product is already there.
func (cs *CartStore) Add(ctx context.Context, productID uint, quantity int) error {
	body := map[string]interface{}{
		"productId": productID,
		"quantity":  quantity,
	}
	if err := cs.client.do(ctx, http.MethodPost, "/api/cart", cs.session.Token(), body, nil); err != nil {
		return err
	}
	return cs.Refresh(ctx)
}

// UpdateQuantity sets the quantity of one cart row.
func (cs *CartStore) UpdateQuantity(ctx context.Context, itemID uint, quantity int) error {
	body := map[string]int{"quantity": quantity}
	path := "/api/cart/" + strconv.FormatUint(uint64(itemID), 10)
	if err := cs.client.do(ctx, http.MethodPatch, path, cs.session.Token(), body, nil); err != nil {
		return err
	}
	return cs.Refresh(ctx)
}

// Remove deletes one cart row.
func (cs *CartStore) Remove(ctx context.Context, itemID uint) error {
	path := "/api/cart/" + strconv.FormatUint(uint64(itemID), 10)
	if err := cs.client.do(ctx, http.MethodDelete, path, cs.session.Token(), nil, nil); err != nil {
		return err
	}
	return cs.Refresh(ctx)
}

// Clear empties the cart. Clearing an already empty cart succeeds.
func (cs *CartStore) Clear(ctx context.Context) error {
	if err := cs.client.do(ctx, http.MethodDelete, "/api/cart", cs.session.Token(), nil, nil); err != nil {
		return err
	}
	return cs.Refresh(ctx)
}

// Checkout creates an order from the cart, then refreshes the now empty cart.
func (cs *CartStore) Checkout(ctx context.Context, name, email, phone, address string) (*Order, error) {
	body := map[string]string{
		"customerName":    name,
		"customerEmail":   email,
		"customerPhone":   phone,
		"shippingAddress": address,
	}

	var order Order
	if err := cs.client.do(ctx, http.MethodPost, "/api/orders", cs.session.Token(), body, &order); err != nil {
		return nil, err
	}
	if err := cs.Refresh(ctx); err != nil {
		return &order, err
	}
	return &order, nil
}

// Items returns a snapshot of the cart rows.
func (cs *CartStore) Items() []CartItem {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]CartItem, len(cs.items))
	copy(out, cs.items)
	return out
}

// Count is the total number of units across all rows.
func (cs *CartStore) Count() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	count := 0
	for _, item := range cs.items {
		count += item.Quantity
	}
	return count
}

// Total folds cart rows against the cached catalog. Rows whose product is no
// longer in the catalog contribute nothing.
func (cs *CartStore) Total() decimal.Decimal {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	total := decimal.Zero
	for _, item := range cs.items {
		product, ok := cs.products[item.ProductID]
		if !ok {
			continue
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
