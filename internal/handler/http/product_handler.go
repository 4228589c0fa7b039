package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/product"
)

// ProductHandler exposes the read-only catalog. No auth: the storefront
// browses products anonymously.
type ProductHandler struct {
	repo product.Repository
}

func NewProductHandler(repo product.Repository) *ProductHandler {
	return &ProductHandler{repo: repo}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.handleListProducts)
	router.Get("/{id}", h.handleGetProduct)
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		respondWithError(w, http.StatusInternalServerError, "Failed to get products")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func (h *ProductHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	p, err := h.repo.GetByID(r.Context(), productID)
	if err != nil {
		clientMessage := "Failed to get product"
		if errors.Is(err, product.ErrNotFound) {
			clientMessage = "Product not found"
		} else {
			log.Error().Err(err).Int64("product_id", productID).Msg("Failed to get product")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"product": p})
}
