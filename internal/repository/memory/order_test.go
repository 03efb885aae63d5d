package memory

import (
	"context"
	"testing"
	"time"

	"github.com/mealmart/mealmart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(id, customerID, vendorID string) *models.Order {
	return &models.Order{
		ID:         id,
		CustomerID: customerID,
		VendorID:   vendorID,
		Items: []models.OrderItem{
			{ItemName: "Pizza", Price: 200, Quantity: 2},
		},
		TotalPrice:      400,
		Status:          models.StatusOrdered,
		PaymentStatus:   models.PaymentPending,
		DeliveryAddress: "12 Main St",
	}
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	created, err := repo.CreateOrder(ctx, newOrder("o1", "c1", "v1"))
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())

	got, err := repo.GetOrderByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	// stored order is isolated from caller mutation
	got.Items[0].Price = 1
	again, err := repo.GetOrderByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 200.0, again.Items[0].Price)

	_, err = repo.GetOrderByID(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	_, err = repo.CreateOrder(ctx, newOrder("o1", "c1", "v1"))
	assert.ErrorIs(t, err, models.ErrOrderConflict)
}

func TestOrderRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	for _, id := range []string{"o1", "o2", "o3"} {
		_, err := repo.CreateOrder(ctx, newOrder(id, "c1", "v1"))
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	orders, err := repo.GetOrdersByCustomerID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "o3", orders[0].ID)
	assert.Equal(t, "o1", orders[2].ID)

	orders, err = repo.GetOrdersByVendorID(ctx, "v2")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderRepository_UpdateOrderStatusGuard(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	order, err := repo.CreateOrder(ctx, newOrder("o1", "c1", "v1"))
	require.NoError(t, err)

	order.Status = models.StatusDelivered
	updated, err := repo.UpdateOrderStatus(ctx, *order, models.StatusOrdered)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)

	// second writer read Ordered too, its write must fail
	order.Status = models.StatusCancelled
	_, err = repo.UpdateOrderStatus(ctx, *order, models.StatusOrdered)
	assert.ErrorIs(t, err, models.ErrOrderConflict)

	current, err := repo.GetOrderByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, current.Status)
}

func TestOrderRepository_UpdateOrderPaymentGuard(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	order, err := repo.CreateOrder(ctx, newOrder("o1", "c1", "v1"))
	require.NoError(t, err)

	order.PaymentStatus = models.PaymentPaid
	order.PaymentRef = "PAY-1"
	updated, err := repo.UpdateOrderPayment(ctx, *order, models.PaymentPending)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, "PAY-1", updated.PaymentRef)

	_, err = repo.UpdateOrderPayment(ctx, *order, models.PaymentPending)
	assert.ErrorIs(t, err, models.ErrOrderConflict)
}

func TestOrderRepository_GetPendingPaymentOrders(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	pending, err := repo.CreateOrder(ctx, newOrder("o1", "c1", "v1"))
	require.NoError(t, err)

	paid, err := repo.CreateOrder(ctx, newOrder("o2", "c1", "v1"))
	require.NoError(t, err)
	paid.PaymentStatus = models.PaymentPaid
	_, err = repo.UpdateOrderPayment(ctx, *paid, models.PaymentPending)
	require.NoError(t, err)

	cancelled, err := repo.CreateOrder(ctx, newOrder("o3", "c1", "v1"))
	require.NoError(t, err)
	cancelled.Status = models.StatusCancelled
	_, err = repo.UpdateOrderStatus(ctx, *cancelled, models.StatusOrdered)
	require.NoError(t, err)

	orders, err := repo.GetPendingPaymentOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, pending.ID, orders[0].ID)
}
