package notifier

import (
	"encoding/json"
	"testing"

	"github.com/mealmart/mealmart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveEvent(t *testing.T, s *Session) Event {
	t.Helper()

	select {
	case data, ok := <-s.C():
		require.True(t, ok, "session channel closed")
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	default:
		t.Fatal("no event pending on session")
		return Event{}
	}
}

func TestHub_EmitReachesEverySessionInRoom(t *testing.T) {
	hub := NewHub()

	// two tabs of the same customer
	first := hub.Join(models.RoleCustomer, "17")
	second := hub.Join(models.RoleCustomer, "17")
	other := hub.Join(models.RoleVendor, "17")

	hub.Emit(CustomerRoom("17"), "order-status-17", map[string]string{"orderId": "o1"})

	for _, s := range []*Session{first, second} {
		event := receiveEvent(t, s)
		assert.Equal(t, "order-status-17", event.Name)
	}

	// vendor room with the same owner id stays untouched
	select {
	case <-other.C():
		t.Fatal("vendor session received customer room event")
	default:
	}
}

func TestHub_EmitPreservesOrderPerRoom(t *testing.T) {
	hub := NewHub()
	s := hub.Join(models.RoleVendor, "7")

	hub.Emit(VendorRoom("7"), "new-order-7", map[string]string{"orderId": "a"})
	hub.Emit(VendorRoom("7"), "order-cancelled-7", map[string]string{"orderId": "a"})

	assert.Equal(t, "new-order-7", receiveEvent(t, s).Name)
	assert.Equal(t, "order-cancelled-7", receiveEvent(t, s).Name)
}

func TestHub_EmitOrderUsesResponseKeys(t *testing.T) {
	hub := NewHub()
	s := hub.Join(models.RoleCustomer, "c1")

	order := &models.Order{
		ID:              "o1",
		CustomerID:      "c1",
		VendorID:        "v1",
		Items:           []models.OrderItem{{ItemName: "Pizza", Price: 200, Quantity: 2}},
		TotalPrice:      400,
		Status:          models.StatusOrdered,
		PaymentStatus:   models.PaymentPending,
		DeliveryAddress: "12 Main St",
	}
	hub.Emit(CustomerRoom("c1"), "order-status-c1", order)

	var frame struct {
		Name    string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}
	select {
	case data := <-s.C():
		require.NoError(t, json.Unmarshal(data, &frame))
	default:
		t.Fatal("no event pending on session")
	}

	// pushed orders carry the same keys as an order fetched over HTTP
	payload := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(frame.Payload, &payload))
	for _, key := range []string{
		"orderId", "customerId", "vendorId", "items", "totalPrice",
		"status", "paymentStatus", "deliveryAddress", "createdAt", "updatedAt",
	} {
		assert.Contains(t, payload, key)
	}
	assert.NotContains(t, payload, "ID")
	assert.NotContains(t, payload, "CustomerID")

	var items []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload["items"], &items))
	require.Len(t, items, 1)
	assert.Contains(t, items[0], "itemName")
	assert.Contains(t, items[0], "price")
	assert.Contains(t, items[0], "quantity")
}

func TestHub_EmitToEmptyRoomIsNoOp(t *testing.T) {
	hub := NewHub()

	// no panic, no error, nothing delivered
	hub.Emit(CustomerRoom("missing"), "order-status-missing", nil)
}

func TestHub_LeaveRemovesSession(t *testing.T) {
	hub := NewHub()
	s := hub.Join(models.RoleCustomer, "17")

	hub.Leave(s)

	// channel is closed after leave
	_, ok := <-s.C()
	assert.False(t, ok)

	// emit to the former room delivers to zero recipients without error
	hub.Emit(CustomerRoom("17"), "order-status-17", nil)
}

func TestHub_LeaveIsIdempotent(t *testing.T) {
	hub := NewHub()
	s := hub.Join(models.RoleCustomer, "17")

	hub.Leave(s)
	hub.Leave(s)
}

func TestHub_SlowSessionDropsEvents(t *testing.T) {
	hub := NewHub()
	s := hub.Join(models.RoleVendor, "7")

	// overflow the session buffer; extra emits must not block
	for i := 0; i < sessionBufferSize+5; i++ {
		hub.Emit(VendorRoom("7"), "new-order-7", i)
	}

	delivered := 0
	for {
		select {
		case <-s.C():
			delivered++
			continue
		default:
		}
		break
	}
	assert.Equal(t, sessionBufferSize, delivered)
}
