package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mealmart/mealmart/internal/lifecycle"
	"github.com/mealmart/mealmart/internal/logger"
	"github.com/mealmart/mealmart/internal/models"
	"github.com/mealmart/mealmart/internal/notifier"
	"github.com/mealmart/mealmart/internal/payment"
	"go.uber.org/zap"
)

const emailTimeout = 10 * time.Second

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts new order
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, orderID string) (*models.Order, error)
	// GetOrdersByCustomerID gets customer orders, newest first
	GetOrdersByCustomerID(ctx context.Context, customerID string) ([]models.Order, error)
	// GetOrdersByVendorID gets vendor orders, newest first
	GetOrdersByVendorID(ctx context.Context, vendorID string) ([]models.Order, error)
	// UpdateOrderStatus updates status while the stored status equals expected
	UpdateOrderStatus(ctx context.Context, order models.Order, expected models.Status) (*models.Order, error)
	// UpdateOrderPayment updates payment while the stored payment status equals expected
	UpdateOrderPayment(ctx context.Context, order models.Order, expected models.PaymentStatus) (*models.Order, error)
	// GetPendingPaymentOrders returns orders awaiting payment settlement
	GetPendingPaymentOrders(ctx context.Context) ([]models.Order, error)
}

// VendorRepository is interface for interacting with vendor-related data
type VendorRepository interface {
	GetVendorByID(ctx context.Context, vendorID string) (*models.Vendor, error)
}

// CustomerRepository is interface for interacting with customer-related data
type CustomerRepository interface {
	GetCustomerByID(ctx context.Context, customerID string) (*models.Customer, error)
}

// Notifier pushes an event to every live connection in a room, best-effort.
type Notifier interface {
	Emit(room string, event string, payload any)
}

// EmailSender sends one email through the external mail relay.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PaymentProvider reports charge statuses from the external payment system.
type PaymentProvider interface {
	GetChargeForOrder(ctx context.Context, orderID string) (*payment.Charge, error)
}

// OrderService orchestrates the order lifecycle: it validates input, asks the
// lifecycle rules for the next state, persists through the repository and
// notifies connected clients. It is the only writer of orders.
type OrderService struct {
	repo      OrderRepository
	vendors   VendorRepository
	customers CustomerRepository
	notifier  Notifier
	mailer    EmailSender
	payments  PaymentProvider
}

// NewOrderService creates new OrderService instance
func NewOrderService(repo OrderRepository, vendors VendorRepository, customers CustomerRepository,
	n Notifier, mailer EmailSender, payments PaymentProvider) *OrderService {
	return &OrderService{
		repo:      repo,
		vendors:   vendors,
		customers: customers,
		notifier:  n,
		mailer:    mailer,
		payments:  payments,
	}
}

// PlaceOrder creates a new order for the customer at the vendor. The total is
// always computed server-side from the item snapshot.
func (os *OrderService) PlaceOrder(ctx context.Context, customerID, vendorID string, items []models.OrderItem, deliveryAddress string) (*models.Order, error) {
	vendor, err := os.vendors.GetVendorByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", models.ErrInvalidOrderItems)
	}

	totalPrice := 0.0
	for i, item := range items {
		if item.ItemName == "" {
			return nil, fmt.Errorf("%w: item %d has no name", models.ErrInvalidOrderItems, i)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d has invalid quantity", models.ErrInvalidOrderItems, i)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("%w: item %d has invalid price", models.ErrInvalidOrderItems, i)
		}
		totalPrice += item.Price * float64(item.Quantity)
	}

	if strings.TrimSpace(deliveryAddress) == "" {
		return nil, models.ErrEmptyAddress
	}

	order := &models.Order{
		ID:              uuid.NewString(),
		CustomerID:      customerID,
		VendorID:        vendorID,
		Items:           items,
		TotalPrice:      totalPrice,
		Status:          models.StatusOrdered,
		PaymentStatus:   models.PaymentPending,
		DeliveryAddress: deliveryAddress,
	}

	order, err = os.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	os.notifier.Emit(notifier.VendorRoom(vendorID), "new-order-"+vendorID, order)

	os.sendOrderEmails(order, vendor)

	return order, nil
}

// sendOrderEmails notifies both parties about a new order. Best-effort and
// non-blocking: relay failures are logged, never propagated.
func (os *OrderService) sendOrderEmails(order *models.Order, vendor *models.Vendor) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
		defer cancel()

		if vendor.Email != "" {
			err := os.mailer.Send(ctx, vendor.Email, "New Order Received",
				fmt.Sprintf("You have a new order. Order ID: %s", order.ID))
			if err != nil {
				logger.Log.Warn("send vendor email", zap.String("order", order.ID), zap.Error(err))
			}
		}

		customer, err := os.customers.GetCustomerByID(ctx, order.CustomerID)
		if err != nil {
			logger.Log.Warn("get customer for email", zap.String("order", order.ID), zap.Error(err))
			return
		}
		if customer.Email != "" {
			err := os.mailer.Send(ctx, customer.Email, "Order Confirmation",
				fmt.Sprintf("Your order has been placed successfully! Order ID: %s", order.ID))
			if err != nil {
				logger.Log.Warn("send customer email", zap.String("order", order.ID), zap.Error(err))
			}
		}
	}()
}

// ListCustomerOrders returns customer orders, newest first
func (os *OrderService) ListCustomerOrders(ctx context.Context, customerID string) ([]models.Order, error) {
	return os.repo.GetOrdersByCustomerID(ctx, customerID)
}

// ListVendorOrders returns vendor orders, newest first
func (os *OrderService) ListVendorOrders(ctx context.Context, vendorID string) ([]models.Order, error) {
	return os.repo.GetOrdersByVendorID(ctx, vendorID)
}

// GetOrder returns the order to one of its parties. This is the reconciliation
// read clients fall back to when a pushed event was missed.
func (os *OrderService) GetOrder(ctx context.Context, orderID string, actor lifecycle.Actor) (*models.Order, error) {
	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleCustomer:
		if actor.ID != order.CustomerID {
			return nil, models.ErrAccessDenied
		}
	case models.RoleVendor:
		if actor.ID != order.VendorID {
			return nil, models.ErrAccessDenied
		}
	default:
		return nil, models.ErrAccessDenied
	}

	return order, nil
}

// UpdateStatus applies a status transition requested by the acting vendor and
// notifies the customer room with the updated order.
func (os *OrderService) UpdateStatus(ctx context.Context, orderID string, requested models.Status, actor lifecycle.Actor) (*models.Order, error) {
	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.NextStatus(order, requested, actor)
	if err != nil {
		return nil, err
	}

	prev := order.Status
	order.Status = next

	updated, err := os.repo.UpdateOrderStatus(ctx, *order, prev)
	if err != nil {
		return nil, err
	}

	os.notifier.Emit(notifier.CustomerRoom(updated.CustomerID), "order-status-"+updated.CustomerID, updated)

	return updated, nil
}

// CancelOrder cancels the customer's own order. Only legal while the order is
// still exactly Ordered. Both parties' rooms are notified.
func (os *OrderService) CancelOrder(ctx context.Context, orderID, customerID string) (*models.Order, error) {
	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	actor := lifecycle.Actor{Role: models.RoleCustomer, ID: customerID}
	next, err := lifecycle.NextStatus(order, models.StatusCancelled, actor)
	if err != nil {
		return nil, err
	}

	prev := order.Status
	order.Status = next

	updated, err := os.repo.UpdateOrderStatus(ctx, *order, prev)
	if err != nil {
		return nil, err
	}

	os.notifier.Emit(notifier.CustomerRoom(updated.CustomerID), "order-status-"+updated.CustomerID, updated)
	os.notifier.Emit(notifier.VendorRoom(updated.VendorID), "order-cancelled-"+updated.VendorID, updated)

	return updated, nil
}

// ConfirmPayment marks the order as paid. Idempotent: confirming an already
// settled order returns it unchanged, so duplicate payment webhooks are
// harmless. An empty paymentRef gets a generated one.
func (os *OrderService) ConfirmPayment(ctx context.Context, orderID, paymentRef string) (*models.Order, error) {
	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next, ref, err := lifecycle.MarkPaid(order, paymentRef)
	if err != nil {
		if errors.Is(err, models.ErrPaymentFinalized) {
			return order, nil
		}
		return nil, err
	}

	if ref == "" {
		ref = "PAY-" + uuid.NewString()
	}

	prev := order.PaymentStatus
	order.PaymentStatus = next
	order.PaymentRef = ref

	updated, err := os.repo.UpdateOrderPayment(ctx, *order, prev)
	if err != nil {
		if errors.Is(err, models.ErrOrderConflict) {
			// lost the race to a concurrent confirmation
			current, readErr := os.repo.GetOrderByID(ctx, orderID)
			if readErr == nil && current.PaymentStatus == models.PaymentPaid {
				return current, nil
			}
		}
		return nil, err
	}

	return updated, nil
}

// FailPayment marks a pending payment as failed
func (os *OrderService) FailPayment(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.MarkFailed(order)
	if err != nil {
		return nil, err
	}

	prev := order.PaymentStatus
	order.PaymentStatus = next

	return os.repo.UpdateOrderPayment(ctx, *order, prev)
}

// RefundPayment tracks an external refund of a paid order
func (os *OrderService) RefundPayment(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.MarkRefunded(order)
	if err != nil {
		return nil, err
	}

	prev := order.PaymentStatus
	order.PaymentStatus = next

	return os.repo.UpdateOrderPayment(ctx, *order, prev)
}

// SettlePendingPayments asks the payment system about each order id read from
// orderCh and applies the outcome
func (os *OrderService) SettlePendingPayments(ctx context.Context, orderCh <-chan string) {
	for {
		var errTooManyReq models.TooManyRequestsError
		select {
		case <-ctx.Done():
			logger.Log.Debug("payment settlement is done")
			return
		case orderID, ok := <-orderCh:
			if !ok {
				return
			}

			logger.Log.Debug("try get charge for order", zap.String("order", orderID))
			charge, err := os.payments.GetChargeForOrder(ctx, orderID)
			if err != nil {
				switch {
				case errors.As(err, &errTooManyReq):
					duration := errTooManyReq.RetryAfter
					logger.Log.Debug("too many requests", zap.Duration("retry-after", duration))
					time.Sleep(duration)
				case errors.Is(err, models.ErrChargeNotFound):
					// charge not created yet, try next tick
				default:
					logger.Log.Error("charge request error", zap.Error(err))
				}
				continue
			}

			switch charge.Status {
			case payment.ChargeStatusPaid:
				if _, err := os.ConfirmPayment(ctx, orderID, charge.PaymentRef); err != nil {
					logger.Log.Error("confirm payment", zap.String("order", orderID), zap.Error(err))
				}
			case payment.ChargeStatusFailed:
				if _, err := os.FailPayment(ctx, orderID); err != nil {
					logger.Log.Error("fail payment", zap.String("order", orderID), zap.Error(err))
				}
			}
		}
	}
}

// GetOrdersForSettlement writes ids of orders awaiting payment to orderCh
func (os *OrderService) GetOrdersForSettlement(ctx context.Context, orderCh chan<- string) error {
	orders, err := os.repo.GetPendingPaymentOrders(ctx)
	if err != nil {
		return err
	}

	for _, order := range orders {
		orderCh <- order.ID
	}

	return nil
}
