package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/mealmart/mealmart/internal/models"
	"github.com/mealmart/mealmart/internal/repository/postgres"
)

const pgErrUniqueViolationCode = "23505"

const (
	insertOrderQuery = `
						INSERT INTO orders (id, customer_id, vendor_id, items, total_price, status, payment_status, delivery_address)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
						RETURNING id, customer_id, vendor_id, items, total_price, status, payment_status, payment_ref, delivery_address, created_at, updated_at
`
	selectOrderByIDQuery = `
						SELECT id, customer_id, vendor_id, items, total_price, status, payment_status, payment_ref, delivery_address, created_at, updated_at FROM orders
						WHERE id = $1
`
	selectOrdersByCustomerIDQuery = `
						SELECT id, customer_id, vendor_id, items, total_price, status, payment_status, payment_ref, delivery_address, created_at, updated_at FROM orders
						WHERE customer_id = $1
						ORDER BY created_at DESC
`
	selectOrdersByVendorIDQuery = `
						SELECT id, customer_id, vendor_id, items, total_price, status, payment_status, payment_ref, delivery_address, created_at, updated_at FROM orders
						WHERE vendor_id = $1
						ORDER BY created_at DESC
`
	// conditioned on the previously read status so a stale writer loses
	updateOrderStatusQuery = `
						UPDATE orders
						SET status = $1, updated_at = now()
						WHERE id = $2 AND status = $3
						RETURNING id, customer_id, vendor_id, items, total_price, status, payment_status, payment_ref, delivery_address, created_at, updated_at
`
	updateOrderPaymentQuery = `
						UPDATE orders
						SET payment_status = $1, payment_ref = $2, updated_at = now()
						WHERE id = $3 AND payment_status = $4
						RETURNING id, customer_id, vendor_id, items, total_price, status, payment_status, payment_ref, delivery_address, created_at, updated_at
`
	selectPendingPaymentOrdersQuery = `
						SELECT id, customer_id, vendor_id, items, total_price, status, payment_status, payment_ref, delivery_address, created_at, updated_at FROM orders
						WHERE payment_status = 'Pending' AND status <> 'Cancelled'
`
)

// OrderRepository implements service.OrderRepository interface
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := models.Order{}
	var items []byte

	err := row.Scan(&order.ID, &order.CustomerID, &order.VendorID, &items, &order.TotalPrice,
		&order.Status, &order.PaymentStatus, &order.PaymentRef, &order.DeliveryAddress,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, err
	}

	return &order, nil
}

// CreateOrder inserts new order to database
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}

	row := or.db.QueryRow(ctx, insertOrderQuery, order.ID, order.CustomerID, order.VendorID,
		items, order.TotalPrice, order.Status, order.PaymentStatus, order.DeliveryAddress)

	created, err := scanOrder(row)
	if err != nil {
		if errCode := or.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrOrderConflict
		}
		return nil, err
	}

	return created, nil
}

// GetOrderByID returns order by id
func (or *OrderRepository) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := scanOrder(or.db.QueryRow(ctx, selectOrderByIDQuery, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

func (or *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := or.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// GetOrdersByCustomerID gets customer orders, newest first
func (or *OrderRepository) GetOrdersByCustomerID(ctx context.Context, customerID string) ([]models.Order, error) {
	return or.queryOrders(ctx, selectOrdersByCustomerIDQuery, customerID)
}

// GetOrdersByVendorID gets vendor orders, newest first
func (or *OrderRepository) GetOrdersByVendorID(ctx context.Context, vendorID string) ([]models.Order, error) {
	return or.queryOrders(ctx, selectOrdersByVendorIDQuery, vendorID)
}

// UpdateOrderStatus updates order status only while the stored status still
// equals expected. A stale write returns ErrOrderConflict.
func (or *OrderRepository) UpdateOrderStatus(ctx context.Context, order models.Order, expected models.Status) (*models.Order, error) {
	updated, err := scanOrder(or.db.QueryRow(ctx, updateOrderStatusQuery, order.Status, order.ID, expected))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrOrderConflict
		}
		return nil, err
	}

	return updated, nil
}

// UpdateOrderPayment updates payment status and reference only while the
// stored payment status still equals expected.
func (or *OrderRepository) UpdateOrderPayment(ctx context.Context, order models.Order, expected models.PaymentStatus) (*models.Order, error) {
	updated, err := scanOrder(or.db.QueryRow(ctx, updateOrderPaymentQuery, order.PaymentStatus, order.PaymentRef, order.ID, expected))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrOrderConflict
		}
		return nil, err
	}

	return updated, nil
}

// GetPendingPaymentOrders returns orders awaiting payment settlement
func (or *OrderRepository) GetPendingPaymentOrders(ctx context.Context) ([]models.Order, error) {
	return or.queryOrders(ctx, selectPendingPaymentOrdersQuery)
}
