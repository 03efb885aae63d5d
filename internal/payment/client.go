package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mealmart/mealmart/internal/models"
)

// default time of retry after
const delaySeconds = 60

// charge status in the payment system
const (
	ChargeStatusPending = "PENDING"
	ChargeStatusPaid    = "PAID"
	ChargeStatusFailed  = "FAILED"
)

// Charge is the payment system's view of an order's charge.
type Charge struct {
	OrderID    string
	Status     string
	PaymentRef string
}

// Client queries the external payment system for charge statuses.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates new Client instance
func NewClient(baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: baseURL,
	}
}

type chargeResponse struct {
	Order      string `json:"order"`
	Status     string `json:"status"`
	PaymentRef string `json:"payment_ref,omitempty"`
}

// GetChargeForOrder returns the charge registered for the order
// 200 — charge found, body carries its status;
// 204 — order is not registered in the payment system;
// 429 — request rate exceeded;
// 500 — payment system internal error.
func (c *Client) GetChargeForOrder(ctx context.Context, orderID string) (*Charge, error) {
	// GET /api/charges/{orderID}
	url, err := url.JoinPath(c.baseURL, "api", "charges", orderID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		chResp := chargeResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&chResp); err != nil {
			return nil, err
		}
		return &Charge{
			OrderID:    chResp.Order,
			Status:     chResp.Status,
			PaymentRef: chResp.PaymentRef,
		}, nil
	case http.StatusNoContent:
		return nil, models.ErrChargeNotFound
	case http.StatusTooManyRequests:
		t := delaySeconds
		if val := resp.Header.Get("Retry-After"); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil {
				t = parsed
			}
		}
		return nil, models.NewTooManyRequestsError(time.Duration(t) * time.Second)
	case http.StatusInternalServerError:
		return nil, models.ErrInternalError
	default:
		return nil, models.ErrInternalError
	}
}
