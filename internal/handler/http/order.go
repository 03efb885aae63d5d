package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mealmart/mealmart/internal/lifecycle"
	"github.com/mealmart/mealmart/internal/middleware"
	"github.com/mealmart/mealmart/internal/models"
)

type OrderService interface {
	// PlaceOrder creates a new order, computing the total server-side
	PlaceOrder(ctx context.Context, customerID, vendorID string, items []models.OrderItem, deliveryAddress string) (*models.Order, error)
	// ListCustomerOrders returns customer orders, newest first
	ListCustomerOrders(ctx context.Context, customerID string) ([]models.Order, error)
	// ListVendorOrders returns vendor orders, newest first
	ListVendorOrders(ctx context.Context, vendorID string) ([]models.Order, error)
	// GetOrder returns the order to one of its parties
	GetOrder(ctx context.Context, orderID string, actor lifecycle.Actor) (*models.Order, error)
	// UpdateStatus applies a vendor-requested status transition
	UpdateStatus(ctx context.Context, orderID string, requested models.Status, actor lifecycle.Actor) (*models.Order, error)
	// CancelOrder cancels the customer's own order
	CancelOrder(ctx context.Context, orderID, customerID string) (*models.Order, error)
}

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type orderResponse struct {
	OrderID          string             `json:"orderId"`
	CustomerID       string             `json:"customerId"`
	VendorID         string             `json:"vendorId"`
	Items            []models.OrderItem `json:"items"`
	TotalPrice       float64            `json:"totalPrice"`
	Status           string             `json:"status"`
	PaymentStatus    string             `json:"paymentStatus"`
	PaymentReference string             `json:"paymentReference,omitempty"`
	DeliveryAddress  string             `json:"deliveryAddress"`
	CreatedAt        string             `json:"createdAt"`
	UpdatedAt        string             `json:"updatedAt"`
}

func newOrderResponse(order *models.Order) orderResponse {
	return orderResponse{
		OrderID:          order.ID,
		CustomerID:       order.CustomerID,
		VendorID:         order.VendorID,
		Items:            order.Items,
		TotalPrice:       order.TotalPrice,
		Status:           string(order.Status),
		PaymentStatus:    string(order.PaymentStatus),
		PaymentReference: order.PaymentRef,
		DeliveryAddress:  order.DeliveryAddress,
		CreatedAt:        order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        order.UpdatedAt.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return
	}
}

type placeOrderRequest struct {
	VendorID        string             `json:"vendorId"`
	Items           []models.OrderItem `json:"items"`
	DeliveryAddress string             `json:"deliveryAddress"`
}

// PlaceOrder places a new customer order
// 201 — order created;
// 400 — invalid items or delivery address;
// 401 — request is not authenticated;
// 404 — vendor not found;
// 500 — internal server error.
func (oh *OrderHandler) PlaceOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var orderReq placeOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&orderReq); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order, err := oh.svc.PlaceOrder(r.Context(), payload.ActorID, orderReq.VendorID, orderReq.Items, orderReq.DeliveryAddress)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidOrderItems), errors.Is(err, models.ErrEmptyAddress):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, models.ErrVendorNotFound):
				http.Error(w, "vendor not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, newOrderResponse(order))
	}
}

// ListCustomerOrders returns orders of the authenticated customer
// 200 — successful request;
// 204 — no orders yet;
// 401 — request is not authenticated;
// 500 — internal server error.
func (oh *OrderHandler) ListCustomerOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := oh.svc.ListCustomerOrders(r.Context(), payload.ActorID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		resp := make([]orderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, newOrderResponse(&orders[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// ListVendorOrders returns orders of the authenticated vendor
func (oh *OrderHandler) ListVendorOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := oh.svc.ListVendorOrders(r.Context(), payload.ActorID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		resp := make([]orderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, newOrderResponse(&orders[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// GetOrder returns a single order to one of its parties. Clients use it to
// reconcile after missed push events.
// 200 — successful request;
// 401 — request is not authenticated;
// 403 — actor is not a party of the order;
// 404 — order not found;
// 500 — internal server error.
func (oh *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orderID := chi.URLParam(r, "orderID")
		actor := lifecycle.Actor{Role: payload.Role, ID: payload.ActorID}

		order, err := oh.svc.GetOrder(r.Context(), orderID, actor)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrOrderNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrAccessDenied):
				http.Error(w, "access denied", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves an order forward on behalf of its vendor
// 200 — status updated;
// 400 — malformed body or unknown status value;
// 401 — request is not authenticated;
// 403 — acting vendor does not own the order;
// 404 — order not found;
// 409 — transition rejected or the order changed concurrently;
// 500 — internal server error.
func (oh *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var statusReq updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&statusReq); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		requested := models.Status(statusReq.Status)
		if !requested.Known() {
			http.Error(w, "unknown order status", http.StatusBadRequest)
			return
		}

		orderID := chi.URLParam(r, "orderID")
		actor := lifecycle.Actor{Role: payload.Role, ID: payload.ActorID}

		order, err := oh.svc.UpdateStatus(r.Context(), orderID, requested, actor)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrOrderNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrAccessDenied):
				http.Error(w, "access denied", http.StatusForbidden)
			case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrOrderConflict):
				http.Error(w, "invalid transition", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

// CancelOrder cancels the authenticated customer's order
// 200 — order cancelled;
// 401 — request is not authenticated;
// 403 — acting customer does not own the order;
// 404 — order not found;
// 409 — order is past the cancellable stage;
// 500 — internal server error.
func (oh *OrderHandler) CancelOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orderID := chi.URLParam(r, "orderID")

		order, err := oh.svc.CancelOrder(r.Context(), orderID, payload.ActorID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrOrderNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrAccessDenied):
				http.Error(w, "access denied", http.StatusForbidden)
			case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrOrderConflict):
				http.Error(w, "order cannot be cancelled at this stage", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}
