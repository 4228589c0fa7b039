package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/auth"
	handlerhttp "github.com/vasiliy-maslov/ecommerce-backend/internal/handler/http"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/order"
)

type mockOrderService struct {
	createFunc       func(ctx context.Context, userID int64, total decimal.Decimal, items []order.OrderItem) (int64, error)
	getByIDFunc      func(ctx context.Context, callerID, orderID int64) (*order.Order, error)
	getByUserIDFunc  func(ctx context.Context, userID int64) ([]order.Order, error)
	getByStatusFunc  func(ctx context.Context, status order.Status) ([]order.Order, error)
	updateStatusFunc func(ctx context.Context, orderID int64, newStatus order.Status) error
}

func (m *mockOrderService) Create(ctx context.Context, userID int64, total decimal.Decimal, items []order.OrderItem) (int64, error) {
	return m.createFunc(ctx, userID, total, items)
}

func (m *mockOrderService) GetByID(ctx context.Context, callerID, orderID int64) (*order.Order, error) {
	return m.getByIDFunc(ctx, callerID, orderID)
}

func (m *mockOrderService) GetByUserID(ctx context.Context, userID int64) ([]order.Order, error) {
	return m.getByUserIDFunc(ctx, userID)
}

func (m *mockOrderService) GetByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	return m.getByStatusFunc(ctx, status)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, orderID int64, newStatus order.Status) error {
	return m.updateStatusFunc(ctx, orderID, newStatus)
}

func newOrderRouter(t *testing.T, svc order.Service) (*chi.Mux, string, string) {
	t.Helper()

	tm := auth.NewTokenManager("test-secret", time.Hour)
	customerToken, err := tm.Issue(7, auth.RoleCustomer)
	require.NoError(t, err)
	adminToken, err := tm.Issue(1, auth.RoleAdmin)
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Route("/api/orders", handlerhttp.NewOrderHandler(svc, tm).RegisterRoutes)
	return router, customerToken, adminToken
}

func doRequest(router http.Handler, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOrderHandler_Create(t *testing.T) {
	validBody := `{"total":"1250.00","items":[{"product_id":1,"qty":2,"price":"500.00"},{"product_id":2,"qty":1,"price":"250.00"}]}`

	tests := []struct {
		name           string
		body           string
		token          bool
		serviceErr     error
		expectedStatus int
	}{
		{name: "success", body: validBody, token: true, expectedStatus: http.StatusCreated},
		{name: "no_token", body: validBody, token: false, expectedStatus: http.StatusUnauthorized},
		{name: "malformed_json", body: `{"total":`, token: true, expectedStatus: http.StatusBadRequest},
		{name: "empty_items", body: `{"total":"100.00","items":[]}`, token: true, expectedStatus: http.StatusBadRequest},
		{name: "missing_total", body: `{"items":[{"product_id":1,"qty":1,"price":"10.00"}]}`, token: true, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{
				createFunc: func(ctx context.Context, userID int64, total decimal.Decimal, items []order.OrderItem) (int64, error) {
					if tt.serviceErr != nil {
						return 0, tt.serviceErr
					}
					assert.Equal(t, int64(7), userID)
					assert.Len(t, items, 2)
					return 42, nil
				},
			}
			router, customerToken, _ := newOrderRouter(t, svc)

			token := ""
			if tt.token {
				token = customerToken
			}
			w := doRequest(router, http.MethodPost, "/api/orders/", token, []byte(tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				var resp struct {
					Message string `json:"message"`
					OrderID int64  `json:"orderId"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "Order created successfully", resp.Message)
				assert.Equal(t, int64(42), resp.OrderID)
			}
		})
	}
}

func TestOrderHandler_GetOrder(t *testing.T) {
	tests := []struct {
		name            string
		serviceErr      error
		expectedStatus  int
		expectedMessage string
	}{
		{name: "found", expectedStatus: http.StatusOK},
		{name: "not_found", serviceErr: order.ErrNotFound, expectedStatus: http.StatusNotFound, expectedMessage: "Order not found"},
		{name: "foreign_order", serviceErr: order.ErrAccessDenied, expectedStatus: http.StatusForbidden, expectedMessage: "Access denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{
				getByIDFunc: func(ctx context.Context, callerID, orderID int64) (*order.Order, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &order.Order{
						ID:     orderID,
						UserID: callerID,
						Total:  decimal.NewFromInt(1250),
						Status: order.StatusPending,
						Items:  []order.OrderItem{{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(500)}},
					}, nil
				},
			}
			router, customerToken, _ := newOrderRouter(t, svc)

			w := doRequest(router, http.MethodGet, "/api/orders/42", customerToken, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedMessage != "" {
				var resp struct {
					Message string `json:"message"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedMessage, resp.Message)
			}
		})
	}
}

func TestOrderHandler_GetOrder_BadID(t *testing.T) {
	router, customerToken, _ := newOrderRouter(t, &mockOrderService{})

	w := doRequest(router, http.MethodGet, "/api/orders/abc", customerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	tests := []struct {
		name           string
		asAdmin        bool
		serviceErr     error
		expectedStatus int
	}{
		{name: "admin_ok", asAdmin: true, expectedStatus: http.StatusOK},
		{name: "customer_forbidden", asAdmin: false, expectedStatus: http.StatusForbidden},
		{name: "invalid_status", asAdmin: true, serviceErr: order.ErrInvalidStatus, expectedStatus: http.StatusBadRequest},
		{name: "not_found", asAdmin: true, serviceErr: order.ErrNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{
				updateStatusFunc: func(ctx context.Context, orderID int64, newStatus order.Status) error {
					return tt.serviceErr
				},
			}
			router, customerToken, adminToken := newOrderRouter(t, svc)

			token := customerToken
			if tt.asAdmin {
				token = adminToken
			}
			w := doRequest(router, http.MethodPut, "/api/orders/42/status", token, []byte(`{"status":"shipped"}`))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_GetByStatus_AdminOnly(t *testing.T) {
	svc := &mockOrderService{
		getByStatusFunc: func(ctx context.Context, status order.Status) ([]order.Order, error) {
			assert.Equal(t, order.StatusPending, status)
			return []order.Order{}, nil
		},
	}
	router, customerToken, adminToken := newOrderRouter(t, svc)

	w := doRequest(router, http.MethodGet, "/api/orders/status/pending", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/orders/status/pending", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
