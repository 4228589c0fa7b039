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
	"github.com/vasiliy-maslov/ecommerce-backend/internal/user"
)

type mockUserService struct {
	registerFunc      func(ctx context.Context, u *user.User, password string) (*user.User, string, error)
	loginFunc         func(ctx context.Context, email, password string) (*user.User, string, error)
	getProfileFunc    func(ctx context.Context, id int64) (*user.User, error)
	updateProfileFunc func(ctx context.Context, id int64, update user.ProfileUpdate) (*user.User, error)
}

func (m *mockUserService) Register(ctx context.Context, u *user.User, password string) (*user.User, string, error) {
	return m.registerFunc(ctx, u, password)
}

func (m *mockUserService) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockUserService) GetProfile(ctx context.Context, id int64) (*user.User, error) {
	return m.getProfileFunc(ctx, id)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id int64, update user.ProfileUpdate) (*user.User, error) {
	return m.updateProfileFunc(ctx, id, update)
}

func newUserRouter(t *testing.T, svc user.Service) (*chi.Mux, auth.TokenManager) {
	t.Helper()

	tm := auth.NewTokenManager("test-secret", time.Hour)
	router := chi.NewRouter()
	router.Route("/api/users", handlerhttp.NewUserHandler(svc, tm).RegisterRoutes)
	return router, tm
}

func TestUserHandler_Register(t *testing.T) {
	validBody := `{"full_name":"Ivan Ivanov","email":"ivan@example.com","password":"secret123"}`

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "success", body: validBody, expectedStatus: http.StatusCreated},
		{name: "malformed_json", body: `{"email":`, expectedStatus: http.StatusBadRequest},
		{name: "bad_email", body: `{"full_name":"Ivan Ivanov","email":"not-an-email","password":"secret123"}`, expectedStatus: http.StatusBadRequest},
		{name: "short_password", body: `{"full_name":"Ivan Ivanov","email":"ivan@example.com","password":"123"}`, expectedStatus: http.StatusBadRequest},
		{name: "unknown_field", body: `{"full_name":"Ivan Ivanov","email":"ivan@example.com","password":"secret123","role":"admin"}`, expectedStatus: http.StatusBadRequest},
		{name: "duplicate_email", body: validBody, serviceErr: user.ErrEmailExists, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockUserService{
				registerFunc: func(ctx context.Context, u *user.User, password string) (*user.User, string, error) {
					if tt.serviceErr != nil {
						return nil, "", tt.serviceErr
					}
					u.ID = 3
					return u, "some-token", nil
				},
			}
			router, _ := newUserRouter(t, svc)

			w := doRequest(router, http.MethodPost, "/api/users/register", "", []byte(tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				var resp struct {
					Token string                   `json:"token"`
					User  handlerhttp.UserResponse `json:"user"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "some-token", resp.Token)
				assert.Equal(t, int64(3), resp.User.ID)
				assert.Equal(t, "ivan@example.com", resp.User.Email)

				// The password hash must never leak into a response.
				assert.NotContains(t, w.Body.String(), "password")
			}
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "success", expectedStatus: http.StatusOK},
		{name: "wrong_credentials", serviceErr: user.ErrInvalidCredentials, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockUserService{
				loginFunc: func(ctx context.Context, email, password string) (*user.User, string, error) {
					if tt.serviceErr != nil {
						return nil, "", tt.serviceErr
					}
					return &user.User{ID: 3, Email: email}, "some-token", nil
				},
			}
			router, _ := newUserRouter(t, svc)

			w := doRequest(router, http.MethodPost, "/api/users/login", "", []byte(`{"email":"ivan@example.com","password":"secret123"}`))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestUserHandler_Profile(t *testing.T) {
	svc := &mockUserService{
		getProfileFunc: func(ctx context.Context, id int64) (*user.User, error) {
			assert.Equal(t, int64(7), id)
			return &user.User{ID: 7, FullName: "Ivan Ivanov", Email: "ivan@example.com"}, nil
		},
	}
	router, tm := newUserRouter(t, svc)

	token, err := tm.Issue(7, auth.RoleCustomer)
	require.NoError(t, err)

	w := doRequest(router, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlerhttp.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.ID)

	// Without a token the profile is unreachable.
	w = doRequest(router, http.MethodGet, "/api/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	var gotUpdate user.ProfileUpdate
	svc := &mockUserService{
		updateProfileFunc: func(ctx context.Context, id int64, update user.ProfileUpdate) (*user.User, error) {
			gotUpdate = update
			return &user.User{ID: id, FullName: "Petr Petrov", Email: "ivan@example.com"}, nil
		},
	}
	router, tm := newUserRouter(t, svc)

	token, err := tm.Issue(7, auth.RoleCustomer)
	require.NoError(t, err)

	w := doRequest(router, http.MethodPut, "/api/users/profile", token, []byte(`{"full_name":"Petr Petrov"}`))
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, gotUpdate.FullName)
	assert.Equal(t, "Petr Petrov", *gotUpdate.FullName)
	assert.Nil(t, gotUpdate.Email)
	assert.Nil(t, gotUpdate.Phone)
}
