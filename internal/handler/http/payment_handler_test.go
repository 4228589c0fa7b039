package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/auth"
	handlerhttp "github.com/vasiliy-maslov/ecommerce-backend/internal/handler/http"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/payment"
)

type mockPaymentService struct {
	createFunc     func(ctx context.Context, m *payment.Method) (int64, error)
	getFunc        func(ctx context.Context, userID, methodID int64) (*payment.Method, error)
	listFunc       func(ctx context.Context, userID int64) ([]payment.Method, error)
	updateFunc     func(ctx context.Context, userID, methodID int64, update payment.MethodUpdate) error
	deleteFunc     func(ctx context.Context, userID, methodID int64) error
	setDefaultFunc func(ctx context.Context, userID, methodID int64) error
}

func (m *mockPaymentService) Create(ctx context.Context, method *payment.Method) (int64, error) {
	return m.createFunc(ctx, method)
}

func (m *mockPaymentService) Get(ctx context.Context, userID, methodID int64) (*payment.Method, error) {
	return m.getFunc(ctx, userID, methodID)
}

func (m *mockPaymentService) List(ctx context.Context, userID int64) ([]payment.Method, error) {
	return m.listFunc(ctx, userID)
}

func (m *mockPaymentService) Update(ctx context.Context, userID, methodID int64, update payment.MethodUpdate) error {
	return m.updateFunc(ctx, userID, methodID, update)
}

func (m *mockPaymentService) Delete(ctx context.Context, userID, methodID int64) error {
	return m.deleteFunc(ctx, userID, methodID)
}

func (m *mockPaymentService) SetDefault(ctx context.Context, userID, methodID int64) error {
	return m.setDefaultFunc(ctx, userID, methodID)
}

func newPaymentRouter(t *testing.T, svc payment.Service) (*chi.Mux, string) {
	t.Helper()

	tm := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tm.Issue(7, auth.RoleCustomer)
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Route("/api/payments/methods", handlerhttp.NewPaymentMethodHandler(svc, tm).RegisterRoutes)
	return router, token
}

func TestPaymentMethodHandler_List_MasksCardNumbers(t *testing.T) {
	svc := &mockPaymentService{
		listFunc: func(ctx context.Context, userID int64) ([]payment.Method, error) {
			assert.Equal(t, int64(7), userID)
			return []payment.Method{
				{ID: 1, UserID: 7, CardType: "visa", CardNumber: "4111111111111111", CardHolderName: "IVAN IVANOV", ExpiryMonth: 12, ExpiryYear: 2030, IsDefault: true},
				{ID: 2, UserID: 7, CardType: "mastercard", CardNumber: "5500 0000 0000 0004", CardHolderName: "IVAN IVANOV", ExpiryMonth: 1, ExpiryYear: 2031},
			}, nil
		},
	}
	router, token := newPaymentRouter(t, svc)

	w := doRequest(router, http.MethodGet, "/api/payments/methods/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		PaymentMethods []handlerhttp.PaymentMethodResponse `json:"paymentMethods"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.PaymentMethods, 2)

	assert.Equal(t, "************1111", resp.PaymentMethods[0].CardNumber)
	assert.True(t, resp.PaymentMethods[0].IsDefault)
	assert.Equal(t, "**** **** **** 0004", resp.PaymentMethods[1].CardNumber)
}

func TestPaymentMethodHandler_Add(t *testing.T) {
	validBody := `{"card_type":"visa","card_number":"4111111111111111","card_holder_name":"IVAN IVANOV","expiry_month":12,"expiry_year":2030,"is_default":true}`

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "success", body: validBody, expectedStatus: http.StatusCreated},
		{name: "missing_fields", body: `{"card_type":"visa"}`, expectedStatus: http.StatusBadRequest},
		{name: "bad_card_number", body: validBody, serviceErr: payment.ErrInvalidCardNumber, expectedStatus: http.StatusBadRequest},
		{name: "expired_card", body: validBody, serviceErr: payment.ErrInvalidExpiry, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPaymentService{
				createFunc: func(ctx context.Context, m *payment.Method) (int64, error) {
					if tt.serviceErr != nil {
						return 0, tt.serviceErr
					}
					assert.Equal(t, int64(7), m.UserID)
					assert.Equal(t, "4111111111111111", m.CardNumber)
					return 10, nil
				},
			}
			router, token := newPaymentRouter(t, svc)

			w := doRequest(router, http.MethodPost, "/api/payments/methods/", token, []byte(tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				var resp struct {
					Message         string `json:"message"`
					PaymentMethodID int64  `json:"paymentMethodId"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, int64(10), resp.PaymentMethodID)
			}
		})
	}
}

func TestPaymentMethodHandler_Update_PassesPartialFields(t *testing.T) {
	var gotUpdate payment.MethodUpdate
	svc := &mockPaymentService{
		updateFunc: func(ctx context.Context, userID, methodID int64, update payment.MethodUpdate) error {
			assert.Equal(t, int64(7), userID)
			assert.Equal(t, int64(5), methodID)
			gotUpdate = update
			return nil
		},
	}
	router, token := newPaymentRouter(t, svc)

	w := doRequest(router, http.MethodPut, "/api/payments/methods/5", token, []byte(`{"card_holder_name":"PETR PETROV","is_default":true}`))
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, gotUpdate.CardHolderName)
	assert.Equal(t, "PETR PETROV", *gotUpdate.CardHolderName)
	require.NotNil(t, gotUpdate.IsDefault)
	assert.True(t, *gotUpdate.IsDefault)
	assert.Nil(t, gotUpdate.CardType)
	assert.Nil(t, gotUpdate.ExpiryMonth)
	assert.Nil(t, gotUpdate.ExpiryYear)
}

func TestPaymentMethodHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "success", expectedStatus: http.StatusOK},
		{name: "not_found", serviceErr: payment.ErrNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPaymentService{
				deleteFunc: func(ctx context.Context, userID, methodID int64) error {
					return tt.serviceErr
				},
			}
			router, token := newPaymentRouter(t, svc)

			w := doRequest(router, http.MethodDelete, "/api/payments/methods/5", token, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPaymentMethodHandler_SetDefault(t *testing.T) {
	called := false
	svc := &mockPaymentService{
		setDefaultFunc: func(ctx context.Context, userID, methodID int64) error {
			called = true
			assert.Equal(t, int64(7), userID)
			assert.Equal(t, int64(5), methodID)
			return nil
		},
	}
	router, token := newPaymentRouter(t, svc)

	w := doRequest(router, http.MethodPut, "/api/payments/methods/5/default", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestPaymentMethodHandler_Unauthenticated(t *testing.T) {
	router, _ := newPaymentRouter(t, &mockPaymentService{})

	w := doRequest(router, http.MethodGet, "/api/payments/methods/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
