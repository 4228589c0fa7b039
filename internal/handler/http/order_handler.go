package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/order"
)

type CreateOrderItem struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int32           `json:"qty" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"price" validate:"required"`
}

type CreateOrderRequest struct {
	Total decimal.Decimal   `json:"total" validate:"required"`
	Items []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderHandler struct {
	service  order.Service
	tokens   auth.TokenManager
	validate *validator.Validate
}

func NewOrderHandler(service order.Service, tokens auth.TokenManager) *OrderHandler {
	return &OrderHandler{
		service:  service,
		tokens:   tokens,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(h.tokens))

		r.Post("/", h.handleCreateOrder)
		r.Get("/", h.handleGetUserOrders)
		r.Get("/{id}", h.handleGetOrder)

		r.Group(func(admin chi.Router) {
			admin.Use(auth.RequireAdmin)
			admin.Put("/{id}/status", h.handleUpdateOrderStatus)
			admin.Get("/status/{status}", h.handleGetOrdersByStatus)
		})
	})
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var requestPayload CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Message: "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}

	if !requestPayload.Total.IsPositive() {
		respondWithError(w, http.StatusBadRequest, "Total must be greater than 0")
		return
	}

	items := make([]order.OrderItem, 0, len(requestPayload.Items))
	for _, item := range requestPayload.Items {
		items = append(items, order.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	orderID, err := h.service.Create(r.Context(), claims.UserID, requestPayload.Total, items)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to create order via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create order")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Order created successfully",
		"orderId": orderID,
	})
}

func (h *OrderHandler) handleGetUserOrders(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	orders, err := h.service.GetByUserID(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to get user orders via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get orders")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	orderID, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	o, err := h.service.GetByID(r.Context(), claims.UserID, orderID)
	if err != nil {
		clientMessage := "Failed to get order"
		switch {
		case errors.Is(err, order.ErrNotFound):
			clientMessage = "Order not found"
		case errors.Is(err, order.ErrAccessDenied):
			clientMessage = "Access denied"
		default:
			log.Error().Err(err).Int64("order_id", orderID).Msg("Failed to get order via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"order": o})
}

func (h *OrderHandler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	err = h.service.UpdateStatus(r.Context(), orderID, order.Status(requestPayload.Status))
	if err != nil {
		clientMessage := "Failed to update order status"
		switch {
		case errors.Is(err, order.ErrInvalidStatus):
			clientMessage = "Invalid status"
		case errors.Is(err, order.ErrNotFound):
			clientMessage = "Order not found"
		default:
			log.Error().Err(err).Int64("order_id", orderID).Msg("Failed to update order status via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Order status updated successfully"})
}

func (h *OrderHandler) handleGetOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	status := order.Status(chi.URLParam(r, "status"))

	orders, err := h.service.GetByStatus(r.Context(), status)
	if err != nil {
		clientMessage := "Failed to get orders"
		if errors.Is(err, order.ErrInvalidStatus) {
			clientMessage = "Invalid status"
		} else {
			log.Error().Err(err).Str("status", string(status)).Msg("Failed to get orders by status via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}
