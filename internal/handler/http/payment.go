package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mealmart/mealmart/internal/models"
)

type PaymentService interface {
	// ConfirmPayment marks the order as paid, idempotently
	ConfirmPayment(ctx context.Context, orderID, paymentRef string) (*models.Order, error)
	// RefundPayment tracks an external refund of a paid order
	RefundPayment(ctx context.Context, orderID string) (*models.Order, error)
}

// PaymentHandler represents HTTP handler for payment callbacks from the
// external payment system.
type PaymentHandler struct {
	svc PaymentService
}

// NewPaymentHandler creates new PaymentHandler instance
func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type paymentResponse struct {
	PaymentStatus    string `json:"paymentStatus"`
	PaymentReference string `json:"paymentReference,omitempty"`
}

// ConfirmPayment is the payment system's success callback. Calling it twice
// for the same order is a no-op success, so duplicate webhooks are harmless.
// 200 — payment recorded (or already recorded);
// 404 — order not found;
// 500 — internal server error.
func (ph *PaymentHandler) ConfirmPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderID")

		order, err := ph.svc.ConfirmPayment(r.Context(), orderID, r.URL.Query().Get("ref"))
		if err != nil {
			switch {
			case errors.Is(err, models.ErrOrderNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, paymentResponse{
			PaymentStatus:    string(order.PaymentStatus),
			PaymentReference: order.PaymentRef,
		})
	}
}

// RefundPayment records a refund of a paid order
// 200 — refund recorded;
// 404 — order not found;
// 409 — order is not paid, nothing to refund;
// 500 — internal server error.
func (ph *PaymentHandler) RefundPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderID")

		order, err := ph.svc.RefundPayment(r.Context(), orderID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrOrderNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrPaymentFinalized), errors.Is(err, models.ErrOrderConflict):
				http.Error(w, "payment is not refundable", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, paymentResponse{
			PaymentStatus: string(order.PaymentStatus),
		})
	}
}
