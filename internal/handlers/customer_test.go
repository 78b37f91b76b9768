package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
)

func TestCreateCustomer(t *testing.T) {
	e := newTestEnv(t)
	handler := NewCustomerHandler(e.repos, e.gen)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name: "valid customer creation",
			requestBody: models.CreateCustomerRequest{
				Name:    "Arun Nair",
				Email:   "Arun@Example.com",
				Phone:   "9447011111",
				Address: "MG Road, Kochi",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "duplicate email",
			requestBody: models.CreateCustomerRequest{
				Name:  "Meera P",
				Email: "MEERA@example.com",
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "customer_exists",
		},
		{
			name:           "missing required fields",
			requestBody:    models.CreateCustomerRequest{Phone: "9447011111"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request",
		},
		{
			name:           "invalid email",
			requestBody:    models.CreateCustomerRequest{Name: "X", Email: "not-an-email"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request",
		},
		{
			name:           "malformed json",
			requestBody:    `{"name":`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(handler.CreateCustomer, call{method: http.MethodPost, path: "/customers", body: tt.requestBody, session: e.staff})
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				var resp models.ErrorResponse
				decode(t, w, &resp)
				assert.Equal(t, tt.expectedError, resp.Error)
				return
			}

			var customer models.Customer
			decode(t, w, &customer)
			assert.Regexp(t, `^CUS-\d{6}$`, customer.CustomID)
			assert.Equal(t, "arun@example.com", customer.Email)
			assert.True(t, customer.IsActive)
		})
	}
}

func TestGetCustomer(t *testing.T) {
	e := newTestEnv(t)
	handler := NewCustomerHandler(e.repos, e.gen)

	tests := []struct {
		name           string
		params         gin.Params
		expectedStatus int
	}{
		{name: "existing customer", params: idParam(e.customer.ID), expectedStatus: http.StatusOK},
		{name: "unknown customer", params: idParam(e.gen.NextID()), expectedStatus: http.StatusNotFound},
		{name: "malformed id", params: gin.Params{{Key: "id", Value: "abc"}}, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(handler.GetCustomer, call{method: http.MethodGet, path: "/customers/x", params: tt.params, session: e.admin})
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestGetCustomers(t *testing.T) {
	e := newTestEnv(t)
	handler := NewCustomerHandler(e.repos, e.gen)

	for _, name := range []string{"Arun Nair", "Bindu Das"} {
		w := perform(handler.CreateCustomer, call{
			method:  http.MethodPost,
			path:    "/customers",
			body:    models.CreateCustomerRequest{Name: name, Email: name[:4] + "@example.com"},
			session: e.staff,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	var resp struct {
		Customers []models.Customer `json:"customers"`
		Total     int64             `json:"total"`
		Page      int               `json:"page"`
		Limit     int               `json:"limit"`
	}

	w := perform(handler.GetCustomers, call{method: http.MethodGet, path: "/customers?page=1&limit=2", session: e.staff})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, int64(3), resp.Total)
	assert.Len(t, resp.Customers, 2)
	assert.Equal(t, 2, resp.Limit)

	w = perform(handler.GetCustomers, call{method: http.MethodGet, path: "/customers?q=bindu", session: e.staff})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "Bindu Das", resp.Customers[0].Name)
}

func TestUpdateCustomer(t *testing.T) {
	e := newTestEnv(t)
	handler := NewCustomerHandler(e.repos, e.gen)

	w := perform(handler.CreateCustomer, call{
		method:  http.MethodPost,
		path:    "/customers",
		body:    models.CreateCustomerRequest{Name: "Arun Nair", Email: "arun@example.com"},
		session: e.staff,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	inactive := false
	w = perform(handler.UpdateCustomer, call{
		method:  http.MethodPut,
		path:    "/customers/x",
		params:  idParam(e.customer.ID),
		body:    models.UpdateCustomerRequest{Phone: "9000000000", IsActive: &inactive},
		session: e.staff,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Customer
	decode(t, w, &updated)
	assert.Equal(t, "9000000000", updated.Phone)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Meera Pillai", updated.Name)

	w = perform(handler.UpdateCustomer, call{
		method:  http.MethodPut,
		path:    "/customers/x",
		params:  idParam(e.customer.ID),
		body:    models.UpdateCustomerRequest{Email: "ARUN@example.com"},
		session: e.staff,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteCustomer(t *testing.T) {
	e := newTestEnv(t)
	handler := NewCustomerHandler(e.repos, e.gen)

	w := perform(handler.DeleteCustomer, call{method: http.MethodDelete, path: "/customers/x", params: idParam(e.customer.ID), session: e.admin})
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(handler.GetCustomer, call{method: http.MethodGet, path: "/customers/x", params: idParam(e.customer.ID), session: e.admin})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
