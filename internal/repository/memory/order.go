// Package memory holds a mutex-guarded in-memory order store with the same
// conditional-update contract as the Postgres repository. It backs the service
// tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mealmart/mealmart/internal/models"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

// NewOrderRepository creates an empty in-memory order store
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*models.Order)}
}

func cloneOrder(order *models.Order) *models.Order {
	clone := *order
	clone.Items = append([]models.OrderItem(nil), order.Items...)
	return &clone
}

// CreateOrder inserts new order
func (or *OrderRepository) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	or.mu.Lock()
	defer or.mu.Unlock()

	if _, exists := or.orders[order.ID]; exists {
		return nil, models.ErrOrderConflict
	}

	stored := cloneOrder(order)
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	or.orders[order.ID] = stored

	return cloneOrder(stored), nil
}

// GetOrderByID returns order by id
func (or *OrderRepository) GetOrderByID(_ context.Context, orderID string) (*models.Order, error) {
	or.mu.RLock()
	defer or.mu.RUnlock()

	order, exists := or.orders[orderID]
	if !exists {
		return nil, models.ErrOrderNotFound
	}

	return cloneOrder(order), nil
}

func (or *OrderRepository) filterOrders(match func(*models.Order) bool) []models.Order {
	or.mu.RLock()
	defer or.mu.RUnlock()

	orders := []models.Order{}
	for _, order := range or.orders {
		if match(order) {
			orders = append(orders, *cloneOrder(order))
		}
	}

	// newest first
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders
}

// GetOrdersByCustomerID gets customer orders, newest first
func (or *OrderRepository) GetOrdersByCustomerID(_ context.Context, customerID string) ([]models.Order, error) {
	return or.filterOrders(func(o *models.Order) bool { return o.CustomerID == customerID }), nil
}

// GetOrdersByVendorID gets vendor orders, newest first
func (or *OrderRepository) GetOrdersByVendorID(_ context.Context, vendorID string) ([]models.Order, error) {
	return or.filterOrders(func(o *models.Order) bool { return o.VendorID == vendorID }), nil
}

// UpdateOrderStatus updates order status only while the stored status still
// equals expected
func (or *OrderRepository) UpdateOrderStatus(_ context.Context, order models.Order, expected models.Status) (*models.Order, error) {
	or.mu.Lock()
	defer or.mu.Unlock()

	stored, exists := or.orders[order.ID]
	if !exists {
		return nil, models.ErrOrderNotFound
	}
	if stored.Status != expected {
		return nil, models.ErrOrderConflict
	}

	stored.Status = order.Status
	stored.UpdatedAt = time.Now()

	return cloneOrder(stored), nil
}

// UpdateOrderPayment updates payment status and reference only while the
// stored payment status still equals expected
func (or *OrderRepository) UpdateOrderPayment(_ context.Context, order models.Order, expected models.PaymentStatus) (*models.Order, error) {
	or.mu.Lock()
	defer or.mu.Unlock()

	stored, exists := or.orders[order.ID]
	if !exists {
		return nil, models.ErrOrderNotFound
	}
	if stored.PaymentStatus != expected {
		return nil, models.ErrOrderConflict
	}

	stored.PaymentStatus = order.PaymentStatus
	stored.PaymentRef = order.PaymentRef
	stored.UpdatedAt = time.Now()

	return cloneOrder(stored), nil
}

// GetPendingPaymentOrders returns orders awaiting payment settlement
func (or *OrderRepository) GetPendingPaymentOrders(_ context.Context) ([]models.Order, error) {
	return or.filterOrders(func(o *models.Order) bool {
		return o.PaymentStatus == models.PaymentPending && o.Status != models.StatusCancelled
	}), nil
}
