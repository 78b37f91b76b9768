package handlers

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
)

type orderResponse struct {
	Order   models.Order   `json:"order"`
	Invoice models.Invoice `json:"invoice"`
}

func TestCreateOrder(t *testing.T) {
	e := newTestEnv(t)
	handler := NewOrderHandler(e.repos, e.billing)

	inactive := models.Customer{ID: e.gen.NextID(), CustomID: "CUS-000002", Name: "Gone", Email: "gone@example.com"}
	require.NoError(t, e.db.Create(&inactive).Error)
	require.NoError(t, e.db.Model(&inactive).Update("is_active", false).Error)

	tests := []struct {
		name           string
		requestBody    models.CreateOrderRequest
		expectedStatus int
		expectedError  string
	}{
		{
			name: "valid order creation",
			requestBody: models.CreateOrderRequest{
				CustomerID: e.customer.ID,
				ProductID:  e.product.ID,
				Quantity:   2,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "invalid customer id",
			requestBody: models.CreateOrderRequest{
				CustomerID: e.gen.NextID(),
				ProductID:  e.product.ID,
				Quantity:   1,
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "customer not found",
		},
		{
			name: "inactive customer",
			requestBody: models.CreateOrderRequest{
				CustomerID: inactive.ID,
				ProductID:  e.product.ID,
				Quantity:   1,
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "missing required fields",
			requestBody: models.CreateOrderRequest{
				CustomerID: e.customer.ID,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request",
		},
		{
			name: "negative quantity",
			requestBody: models.CreateOrderRequest{
				CustomerID: e.customer.ID,
				ProductID:  e.product.ID,
				Quantity:   -1,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "negative unit price",
			requestBody: models.CreateOrderRequest{
				CustomerID: e.customer.ID,
				ProductID:  e.product.ID,
				Quantity:   1,
				UnitPrice:  decimal.NewFromInt(-100),
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(handler.CreateOrder, call{method: http.MethodPost, path: "/orders", body: tt.requestBody, session: e.staff})
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus != http.StatusCreated {
				var resp models.ErrorResponse
				decode(t, w, &resp)
				if tt.expectedError != "" {
					assert.Equal(t, tt.expectedError, resp.Error)
				}
				return
			}

			var resp orderResponse
			decode(t, w, &resp)
			assert.Regexp(t, `^ORD-\d{6}$`, resp.Order.CustomID)
			assert.Regexp(t, `^INV-\d{6}$`, resp.Invoice.InvoiceNumber)
			assert.True(t, decimal.NewFromInt(2000).Equal(resp.Order.TotalAmount))
			assert.True(t, decimal.NewFromInt(2000).Equal(resp.Invoice.TotalAmount))
			assert.Equal(t, models.InvoicePending, resp.Invoice.Status)
			require.NotNil(t, resp.Invoice.OrderID)
			assert.Equal(t, resp.Order.ID, *resp.Invoice.OrderID)
		})
	}
}

func TestCreateOrderForbiddenForTechnician(t *testing.T) {
	e := newTestEnv(t)
	handler := NewOrderHandler(e.repos, e.billing)

	w := perform(handler.CreateOrder, call{
		method:  http.MethodPost,
		path:    "/orders",
		body:    models.CreateOrderRequest{CustomerID: e.customer.ID, ProductID: e.product.ID, Quantity: 1},
		session: e.tech,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	e := newTestEnv(t)
	handler := NewOrderHandler(e.repos, e.billing)

	w := perform(handler.CreateOrder, call{
		method:  http.MethodPost,
		path:    "/orders",
		body:    models.CreateOrderRequest{CustomerID: e.customer.ID, ProductID: e.product.ID, Quantity: 1},
		session: e.staff,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created orderResponse
	decode(t, w, &created)

	w = perform(handler.UpdateOrderStatus, call{
		method:  http.MethodPatch,
		path:    "/orders/x/status",
		params:  idParam(created.Order.ID),
		body:    models.UpdateOrderStatusRequest{Status: models.OrderCancelled},
		session: e.admin,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var order models.Order
	decode(t, w, &order)
	assert.Equal(t, models.OrderCancelled, order.Status)

	inv, err := e.repos.Invoices.Get(t.Context(), created.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceCancelled, inv.Status)

	w = perform(handler.UpdateOrderStatus, call{
		method:  http.MethodPatch,
		path:    "/orders/x/status",
		params:  idParam(created.Order.ID),
		body:    models.UpdateOrderStatusRequest{Status: "SHIPPED"},
		session: e.admin,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(handler.GetOrders, call{method: http.MethodGet, path: "/orders?status=cancelled&customer_id=" + e.customer.ID.String(), session: e.staff})
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Orders []models.Order `json:"orders"`
		Total  int64          `json:"total"`
	}
	decode(t, w, &list)
	assert.Equal(t, int64(1), list.Total)
}
