// Package lifecycle holds the pure transition rules for an order's status and
// payment status. Functions here compute the next value and never persist it;
// the service applies the result through the repository.
package lifecycle

import (
	"github.com/mealmart/mealmart/internal/models"
)

// Actor is who requests a transition.
type Actor struct {
	Role models.Role
	ID   string
}

// NextStatus validates a requested status transition and returns the resulting
// status.
//
// Rules:
//   - unknown target or a terminal current status is ErrInvalidTransition;
//   - only the owning vendor may move the order forward through Preparing,
//     Out for Delivery, Delivered or Cancelled. Forward jumps are allowed
//     (a vendor may go straight from Ordered to Delivered); strict sequencing
//     is deliberately not enforced;
//   - the owning customer may only request Cancelled, and only while the
//     current status is exactly Ordered.
func NextStatus(order *models.Order, requested models.Status, actor Actor) (models.Status, error) {
	if !requested.Known() {
		return "", models.ErrInvalidTransition
	}
	if order.Status.Terminal() {
		return "", models.ErrInvalidTransition
	}

	switch actor.Role {
	case models.RoleVendor:
		if actor.ID != order.VendorID {
			return "", models.ErrAccessDenied
		}
		// moving back to the initial status is not a forward transition
		if requested == models.StatusOrdered {
			return "", models.ErrInvalidTransition
		}
		return requested, nil
	case models.RoleCustomer:
		if actor.ID != order.CustomerID {
			return "", models.ErrAccessDenied
		}
		if requested != models.StatusCancelled {
			return "", models.ErrAccessDenied
		}
		if order.Status != models.StatusOrdered {
			return "", models.ErrInvalidTransition
		}
		return models.StatusCancelled, nil
	default:
		return "", models.ErrAccessDenied
	}
}

// MarkPaid returns the payment status and reference resulting from a successful
// payment. A Paid or Refunded order is already settled and returns
// ErrPaymentFinalized; the caller decides whether that is an idempotent no-op.
func MarkPaid(order *models.Order, paymentRef string) (models.PaymentStatus, string, error) {
	switch order.PaymentStatus {
	case models.PaymentPaid, models.PaymentRefunded:
		return "", "", models.ErrPaymentFinalized
	}
	return models.PaymentPaid, paymentRef, nil
}

// MarkFailed marks the payment as failed. Permitted only from Pending.
func MarkFailed(order *models.Order) (models.PaymentStatus, error) {
	if order.PaymentStatus != models.PaymentPending {
		return "", models.ErrPaymentFinalized
	}
	return models.PaymentFailed, nil
}

// MarkRefunded marks the payment as refunded. Permitted only from Paid; the
// refund itself is performed by the external payment system, this only tracks
// the outcome.
func MarkRefunded(order *models.Order) (models.PaymentStatus, error) {
	if order.PaymentStatus != models.PaymentPaid {
		return "", models.ErrPaymentFinalized
	}
	return models.PaymentRefunded, nil
}
