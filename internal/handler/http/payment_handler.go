package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/payment"
)

type CreatePaymentMethodRequest struct {
	CardType       string `json:"card_type" validate:"required"`
	CardNumber     string `json:"card_number" validate:"required"`
	CardHolderName string `json:"card_holder_name" validate:"required"`
	ExpiryMonth    int    `json:"expiry_month" validate:"required"`
	ExpiryYear     int    `json:"expiry_year" validate:"required"`
	IsDefault      bool   `json:"is_default"`
	BillingAddress string `json:"billing_address"`
}

type UpdatePaymentMethodRequest struct {
	CardType       *string `json:"card_type,omitempty"`
	CardHolderName *string `json:"card_holder_name,omitempty"`
	ExpiryMonth    *int    `json:"expiry_month,omitempty"`
	ExpiryYear     *int    `json:"expiry_year,omitempty"`
	IsDefault      *bool   `json:"is_default,omitempty"`
	BillingAddress *string `json:"billing_address,omitempty"`
}

// PaymentMethodResponse is the serialization boundary where card numbers get masked.
type PaymentMethodResponse struct {
	ID             int64  `json:"id"`
	CardType       string `json:"card_type"`
	CardNumber     string `json:"card_number"`
	CardHolderName string `json:"card_holder_name"`
	ExpiryMonth    int    `json:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"`
	IsDefault      bool   `json:"is_default"`
	BillingAddress string `json:"billing_address,omitempty"`
}

type PaymentMethodHandler struct {
	service  payment.Service
	tokens   auth.TokenManager
	validate *validator.Validate
}

func NewPaymentMethodHandler(service payment.Service, tokens auth.TokenManager) *PaymentMethodHandler {
	return &PaymentMethodHandler{
		service:  service,
		tokens:   tokens,
		validate: validator.New(),
	}
}

func (h *PaymentMethodHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(h.tokens))

		r.Get("/", h.handleListPaymentMethods)
		r.Post("/", h.handleAddPaymentMethod)
		r.Get("/{id}", h.handleGetPaymentMethod)
		r.Put("/{id}", h.handleUpdatePaymentMethod)
		r.Delete("/{id}", h.handleDeletePaymentMethod)
		r.Put("/{id}/default", h.handleSetDefaultPaymentMethod)
	})
}

func (h *PaymentMethodHandler) handleListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	methods, err := h.service.List(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to list payment methods via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get payment methods")
		return
	}

	masked := make([]PaymentMethodResponse, 0, len(methods))
	for i := range methods {
		masked = append(masked, toPaymentMethodResponse(&methods[i]))
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"paymentMethods": masked})
}

func (h *PaymentMethodHandler) handleGetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	methodID, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	m, err := h.service.Get(r.Context(), claims.UserID, methodID)
	if err != nil {
		clientMessage := "Failed to get payment method"
		if errors.Is(err, payment.ErrNotFound) {
			clientMessage = "Payment method not found"
		} else {
			log.Error().Err(err).Int64("payment_method_id", methodID).Msg("Failed to get payment method via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"paymentMethod": toPaymentMethodResponse(m)})
}

func (h *PaymentMethodHandler) handleAddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var requestPayload CreatePaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Message: "Missing required fields",
				Details: formatValidationErrors(validationErrors),
			})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}

	m := payment.Method{
		UserID:         claims.UserID,
		CardType:       requestPayload.CardType,
		CardNumber:     requestPayload.CardNumber,
		CardHolderName: requestPayload.CardHolderName,
		ExpiryMonth:    requestPayload.ExpiryMonth,
		ExpiryYear:     requestPayload.ExpiryYear,
		IsDefault:      requestPayload.IsDefault,
		BillingAddress: requestPayload.BillingAddress,
	}

	methodID, err := h.service.Create(r.Context(), &m)
	if err != nil {
		clientMessage := "Failed to add payment method"
		switch {
		case errors.Is(err, payment.ErrInvalidCardNumber):
			clientMessage = "Invalid card number format"
		case errors.Is(err, payment.ErrInvalidExpiry):
			clientMessage = "Invalid or expired card date"
		default:
			log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to add payment method via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":         "Payment method added successfully",
		"paymentMethodId": methodID,
	})
}

func (h *PaymentMethodHandler) handleUpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	methodID, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload UpdatePaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	err = h.service.Update(r.Context(), claims.UserID, methodID, payment.MethodUpdate{
		CardType:       requestPayload.CardType,
		CardHolderName: requestPayload.CardHolderName,
		ExpiryMonth:    requestPayload.ExpiryMonth,
		ExpiryYear:     requestPayload.ExpiryYear,
		IsDefault:      requestPayload.IsDefault,
		BillingAddress: requestPayload.BillingAddress,
	})
	if err != nil {
		clientMessage := "Failed to update payment method"
		switch {
		case errors.Is(err, payment.ErrNotFound):
			clientMessage = "Payment method not found"
		case errors.Is(err, payment.ErrInvalidExpiry):
			clientMessage = "Invalid or expired card date"
		default:
			log.Error().Err(err).Int64("payment_method_id", methodID).Msg("Failed to update payment method via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Payment method updated successfully"})
}

func (h *PaymentMethodHandler) handleDeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	methodID, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.service.Delete(r.Context(), claims.UserID, methodID); err != nil {
		clientMessage := "Failed to delete payment method"
		if errors.Is(err, payment.ErrNotFound) {
			clientMessage = "Payment method not found"
		} else {
			log.Error().Err(err).Int64("payment_method_id", methodID).Msg("Failed to delete payment method via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Payment method deleted successfully"})
}

func (h *PaymentMethodHandler) handleSetDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	methodID, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.service.SetDefault(r.Context(), claims.UserID, methodID); err != nil {
		clientMessage := "Failed to set default payment method"
		if errors.Is(err, payment.ErrNotFound) {
			clientMessage = "Payment method not found"
		} else {
			log.Error().Err(err).Int64("payment_method_id", methodID).Msg("Failed to set default payment method via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Default payment method updated successfully"})
}

func toPaymentMethodResponse(m *payment.Method) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:             m.ID,
		CardType:       m.CardType,
		CardNumber:     payment.MaskCardNumber(m.CardNumber),
		CardHolderName: m.CardHolderName,
		ExpiryMonth:    m.ExpiryMonth,
		ExpiryYear:     m.ExpiryYear,
		IsDefault:      m.IsDefault,
		BillingAddress: m.BillingAddress,
	}
}
