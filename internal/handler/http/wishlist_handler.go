package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/wishlist"
)

type AddToWishlistRequest struct {
	ProductID int64 `json:"product_id"`
}

type WishlistHandler struct {
	repo   wishlist.Repository
	tokens auth.TokenManager
}

func NewWishlistHandler(repo wishlist.Repository, tokens auth.TokenManager) *WishlistHandler {
	return &WishlistHandler{repo: repo, tokens: tokens}
}

func (h *WishlistHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(h.tokens))

		r.Get("/", h.handleGetWishlist)
		r.Post("/", h.handleAddToWishlist)
		r.Delete("/{productId}", h.handleRemoveFromWishlist)
		r.Get("/{productId}/contains", h.handleContains)
	})
}

func (h *WishlistHandler) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	items, err := h.repo.GetByUserID(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to get wishlist")
		respondWithError(w, http.StatusInternalServerError, "Failed to get wishlist")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"wishlist": items})
}

func (h *WishlistHandler) handleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var requestPayload AddToWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if requestPayload.ProductID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	if err := h.repo.Add(r.Context(), claims.UserID, requestPayload.ProductID); err != nil {
		log.Error().Err(err).Int64("product_id", requestPayload.ProductID).Msg("Failed to add product to wishlist")
		respondWithError(w, http.StatusInternalServerError, "Failed to add to wishlist")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Product added to wishlist successfully"})
}

func (h *WishlistHandler) handleRemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	productID, err := parseIDParam(chi.URLParam(r, "productId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id parameter")
		return
	}

	if err := h.repo.Remove(r.Context(), claims.UserID, productID); err != nil {
		clientMessage := "Failed to remove from wishlist"
		if errors.Is(err, wishlist.ErrNotFound) {
			clientMessage = "Product not found in wishlist"
		} else {
			log.Error().Err(err).Int64("product_id", productID).Msg("Failed to remove product from wishlist")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Product removed from wishlist successfully"})
}

func (h *WishlistHandler) handleContains(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	productID, err := parseIDParam(chi.URLParam(r, "productId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id parameter")
		return
	}

	exists, err := h.repo.Contains(r.Context(), claims.UserID, productID)
	if err != nil {
		log.Error().Err(err).Int64("product_id", productID).Msg("Failed to check wishlist")
		respondWithError(w, http.StatusInternalServerError, "Failed to check wishlist")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"inWishlist": exists})
}
