package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/user"
)

type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=2"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

type UserHandler struct {
	service  user.Service
	tokens   auth.TokenManager
	validate *validator.Validate
}

func NewUserHandler(service user.Service, tokens auth.TokenManager) *UserHandler {
	return &UserHandler{
		service:  service,
		tokens:   tokens,
		validate: validator.New(),
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Post("/register", h.handleRegister)
	router.Post("/login", h.handleLogin)

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(h.tokens))
		r.Get("/profile", h.handleGetProfile)
		r.Put("/profile", h.handleUpdateProfile)
	})
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode register request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if !h.validatePayload(w, requestPayload) {
		return
	}

	domainUser := user.User{
		FullName: requestPayload.FullName,
		Email:    requestPayload.Email,
		Phone:    requestPayload.Phone,
	}

	createdUser, token, err := h.service.Register(r.Context(), &domainUser, requestPayload.Password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register user via service")

		clientMessage := "Failed to register user"
		if errors.Is(err, user.ErrEmailExists) {
			clientMessage = "User already exists"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"token":   token,
		"user":    toUserResponse(createdUser),
	})
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if !h.validatePayload(w, requestPayload) {
		return
	}

	loggedIn, token, err := h.service.Login(r.Context(), requestPayload.Email, requestPayload.Password)
	if err != nil {
		clientMessage := "Failed to login"
		if errors.Is(err, user.ErrInvalidCredentials) {
			clientMessage = "Invalid email or password"
		} else {
			log.Error().Err(err).Msg("Failed to login user via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user":    toUserResponse(loggedIn),
	})
}

func (h *UserHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	profile, err := h.service.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to get profile via service")

		clientMessage := "Failed to get profile"
		if errors.Is(err, user.ErrNotFound) {
			clientMessage = "User not found"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(profile))
}

func (h *UserHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var requestPayload UpdateProfileRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if !h.validatePayload(w, requestPayload) {
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), claims.UserID, user.ProfileUpdate{
		FullName: requestPayload.FullName,
		Email:    requestPayload.Email,
		Phone:    requestPayload.Phone,
	})
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to update profile via service")

		clientMessage := "Failed to update profile"
		switch {
		case errors.Is(err, user.ErrNotFound):
			clientMessage = "User not found"
		case errors.Is(err, user.ErrEmailExists):
			clientMessage = "Email already exists"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(updated))
}

func (h *UserHandler) validatePayload(w http.ResponseWriter, payload interface{}) bool {
	err := h.validate.Struct(payload)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Message: "Validation failed",
			Details: formatValidationErrors(validationErrors),
		})
	} else {
		log.Error().Err(err).Msg("Unexpected error type during validation")
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
	}
	return false
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Phone:    u.Phone,
	}
}
