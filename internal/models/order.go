package models

import "time"

// Status is order delivery status.
type Status string

// Ordered — order is placed and waiting for the vendor;
// Preparing — vendor has started preparing the order;
// Out for Delivery — order has left the vendor;
// Delivered — order reached the customer, terminal;
// Cancelled — order was cancelled, terminal.
const (
	StatusOrdered        Status = "Ordered"
	StatusPreparing      Status = "Preparing"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
	StatusCancelled      Status = "Cancelled"
)

// Known reports whether s is a recognized order status.
func (s Status) Known() bool {
	switch s {
	case StatusOrdered, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// PaymentStatus is order payment status, an axis independent from Status.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

// OrderItem is a line item snapshotted at order-creation time.
// Later menu changes do not alter it.
type OrderItem struct {
	ItemName string  `json:"itemName"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order is order entity. The json tags mirror the REST response keys: pushed
// orders and fetched orders decode with the same shape.
type Order struct {
	ID              string        `json:"orderId"`
	CustomerID      string        `json:"customerId"`
	VendorID        string        `json:"vendorId"`
	Items           []OrderItem   `json:"items"`
	TotalPrice      float64       `json:"totalPrice"`
	Status          Status        `json:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	PaymentRef      string        `json:"paymentReference,omitempty"`
	DeliveryAddress string        `json:"deliveryAddress"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}
