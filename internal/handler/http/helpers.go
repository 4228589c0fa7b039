package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/notification"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/order"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/payment"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/product"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/user"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/wishlist"
)

type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// respondWithError отправляет JSON ошибку
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"message": message})
}

// respondWithJSON отправляет JSON ответ
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, wishlist.ErrNotFound),
		errors.Is(err, notification.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, payment.ErrInvalidCardNumber),
		errors.Is(err, payment.ErrInvalidExpiry),
		errors.Is(err, user.ErrEmailExists):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func formatValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return details
}

func parseIDParam(param string) (int64, error) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id parameter")
	}
	return id, nil
}
