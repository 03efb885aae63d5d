package worker

import (
	"context"
	"time"

	"github.com/mealmart/mealmart/internal/logger"
)

type OrderService interface {
	SettlePendingPayments(ctx context.Context, orderCh <-chan string)
	GetOrdersForSettlement(ctx context.Context, orderCh chan<- string) error
}

// PaymentProcessor is worker performing payment settlement for pending orders.
// It is the asynchronous payment flow; the synchronous one is the payment
// callback endpoint.
type PaymentProcessor struct {
	svc      OrderService
	interval time.Duration
}

// NewPaymentProcessor creates new payment processor
func NewPaymentProcessor(svc OrderService, interval time.Duration) *PaymentProcessor {
	return &PaymentProcessor{svc: svc, interval: interval}
}

// ProcessPayments periodically feeds pending orders into settlement
func (pp *PaymentProcessor) ProcessPayments(ctx context.Context) {
	orders := make(chan string, 10)

	go pp.svc.SettlePendingPayments(ctx, orders)

	ticker := time.NewTicker(pp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("payment processor is done")
			return
		case <-ticker.C:
			if err := pp.svc.GetOrdersForSettlement(ctx, orders); err != nil {
				logger.Log.Error("error get orders for settlement")
			}
		}
	}
}
