package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/notification"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/order"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/payment"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/product"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/recentlyviewed"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/user"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/wishlist"
)

// NewRouter wires every repository, service and handler onto the pool and
// returns the ready-to-serve mux.
func NewRouter(dbPool *pgxpool.Pool, tokens auth.TokenManager) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "Server is running"})
	})

	userHandler := NewUserHandler(user.NewService(user.NewRepository(dbPool), tokens), tokens)
	orderHandler := NewOrderHandler(order.NewService(order.NewRepository(dbPool)), tokens)
	paymentHandler := NewPaymentMethodHandler(payment.NewService(payment.NewRepository(dbPool)), tokens)
	productHandler := NewProductHandler(product.NewRepository(dbPool))
	wishlistHandler := NewWishlistHandler(wishlist.NewRepository(dbPool), tokens)
	notificationHandler := NewNotificationHandler(notification.NewRepository(dbPool), tokens)
	recentlyViewedHandler := NewRecentlyViewedHandler(recentlyviewed.NewRepository(dbPool), tokens)

	r.Route("/api", func(api chi.Router) {
		api.Route("/users", userHandler.RegisterRoutes)
		api.Route("/products", productHandler.RegisterRoutes)
		api.Route("/orders", orderHandler.RegisterRoutes)
		api.Route("/wishlist", wishlistHandler.RegisterRoutes)
		api.Route("/payments/methods", paymentHandler.RegisterRoutes)
		api.Route("/notifications", notificationHandler.RegisterRoutes)
		api.Route("/recently-viewed", recentlyViewedHandler.RegisterRoutes)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Route not found")
	})

	return r
}
