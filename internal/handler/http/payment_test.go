package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/mealmart/mealmart/internal/handler/http/mocks"
	"github.com/mealmart/mealmart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentRequestContext(req *http.Request, orderID string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", orderID)
	return context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
}

func TestPaymentHandler_ConfirmPayment(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		setup          func(t *testing.T) *mocks.MockPaymentService
		wantStatusCode int
		wantBody       *paymentResponse
	}{
		{
			name:   "valid_callback_return_200",
			target: "/api/payment/pay/o1?ref=PAY-1",
			setup: func(t *testing.T) *mocks.MockPaymentService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().ConfirmPayment(gomock.Any(), "o1", "PAY-1").
					Return(&models.Order{ID: "o1", PaymentStatus: models.PaymentPaid, PaymentRef: "PAY-1"}, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantBody:       &paymentResponse{PaymentStatus: "Paid", PaymentReference: "PAY-1"},
		},
		{
			name:   "duplicate_callback_return_200",
			target: "/api/payment/pay/o1?ref=PAY-2",
			setup: func(t *testing.T) *mocks.MockPaymentService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				// already-paid order keeps its original reference
				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().ConfirmPayment(gomock.Any(), "o1", "PAY-2").
					Return(&models.Order{ID: "o1", PaymentStatus: models.PaymentPaid, PaymentRef: "PAY-1"}, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantBody:       &paymentResponse{PaymentStatus: "Paid", PaymentReference: "PAY-1"},
		},
		{
			name:   "order_not_found_return_404",
			target: "/api/payment/pay/o9",
			setup: func(t *testing.T) *mocks.MockPaymentService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().ConfirmPayment(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrOrderNotFound).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:   "internal_error_return_500",
			target: "/api/payment/pay/o1",
			setup: func(t *testing.T) *mocks.MockPaymentService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().ConfirmPayment(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrInternalError).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, tt.target, nil)
			require.NoError(t, err)

			w := httptest.NewRecorder()
			st := tt.setup(t)

			handler := NewPaymentHandler(st)
			h := handler.ConfirmPayment()
			h(w, req.WithContext(paymentRequestContext(req, "o1")))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			if tt.wantBody != nil {
				resBody, err := io.ReadAll(res.Body)
				require.NoError(t, err)

				var got paymentResponse
				require.NoError(t, json.Unmarshal(resBody, &got))
				assert.Equal(t, *tt.wantBody, got)
			}
		})
	}
}

func TestPaymentHandler_RefundPayment(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(t *testing.T) *mocks.MockPaymentService
		wantStatusCode int
	}{
		{
			name: "valid_refund_return_200",
			setup: func(t *testing.T) *mocks.MockPaymentService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().RefundPayment(gomock.Any(), "o1").
					Return(&models.Order{ID: "o1", PaymentStatus: models.PaymentRefunded}, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "unpaid_order_return_409",
			setup: func(t *testing.T) *mocks.MockPaymentService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().RefundPayment(gomock.Any(), gomock.Any()).Return(nil, models.ErrPaymentFinalized).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name: "order_not_found_return_404",
			setup: func(t *testing.T) *mocks.MockPaymentService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().RefundPayment(gomock.Any(), gomock.Any()).Return(nil, models.ErrOrderNotFound).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, "/api/payment/refund/o1", nil)
			require.NoError(t, err)

			w := httptest.NewRecorder()
			st := tt.setup(t)

			handler := NewPaymentHandler(st)
			h := handler.RefundPayment()
			h(w, req.WithContext(paymentRequestContext(req, "o1")))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
		})
	}
}
