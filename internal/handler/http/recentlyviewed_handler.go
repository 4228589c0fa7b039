package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/recentlyviewed"
)

type RecordViewRequest struct {
	ProductID int64 `json:"product_id"`
}

type RecentlyViewedHandler struct {
	repo   recentlyviewed.Repository
	tokens auth.TokenManager
}

func NewRecentlyViewedHandler(repo recentlyviewed.Repository, tokens auth.TokenManager) *RecentlyViewedHandler {
	return &RecentlyViewedHandler{repo: repo, tokens: tokens}
}

func (h *RecentlyViewedHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(h.tokens))

		r.Get("/", h.handleGetRecentlyViewed)
		r.Post("/", h.handleRecordView)
	})
}

func (h *RecentlyViewedHandler) handleGetRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	limit := recentlyviewed.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	views, err := h.repo.GetByUserID(r.Context(), claims.UserID, limit)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to get recently viewed products")
		respondWithError(w, http.StatusInternalServerError, "Failed to get recently viewed products")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"recentlyViewed": views})
}

func (h *RecentlyViewedHandler) handleRecordView(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var requestPayload RecordViewRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if requestPayload.ProductID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	if err := h.repo.Record(r.Context(), claims.UserID, requestPayload.ProductID); err != nil {
		log.Error().Err(err).Int64("product_id", requestPayload.ProductID).Msg("Failed to record product view")
		respondWithError(w, http.StatusInternalServerError, "Failed to record product view")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Product added to recently viewed"})
}
