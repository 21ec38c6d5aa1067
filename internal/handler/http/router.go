package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Orders    *service.OrderService
	Products  *service.ProductService
	Reviews   *service.ReviewService
	Users     *service.UserService
	Dashboard *service.DashboardService
	Health    *health.Handler
	Validator middleware.TokenValidator
	Logger    *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.RequestLogger(deps.Logger))

	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	orderHandler := NewOrderHandler(deps.Orders, deps.Users, deps.Logger)
	productHandler := NewProductHandler(deps.Products, deps.Logger)
	reviewHandler := NewReviewHandler(deps.Reviews, deps.Users, deps.Logger)
	userHandler := NewUserHandler(deps.Users, deps.Logger)
	dashboardHandler := NewDashboardHandler(deps.Dashboard, deps.Logger)

	authn := middleware.Auth(deps.Validator)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public catalog reads.
		r.Get("/products", productHandler.ListProducts)
		r.Get("/products/{id}", productHandler.GetProduct)
		r.Get("/products/{id}/reviews", reviewHandler.ListProductReviews)

		// Authenticated customer routes.
		r.Group(func(r chi.Router) {
			r.Use(authn)

			r.Get("/me", userHandler.Me)
			r.Post("/me/addresses", userHandler.AddAddress)
			r.Get("/me/addresses", userHandler.ListAddresses)
			r.Put("/me/addresses/{id}", userHandler.UpdateAddress)
			r.Delete("/me/addresses/{id}", userHandler.RemoveAddress)
			r.Get("/me/wishlist", userHandler.ListWishlist)
			r.Put("/me/wishlist/{productId}", userHandler.AddToWishlist)
			r.Delete("/me/wishlist/{productId}", userHandler.RemoveFromWishlist)

			r.Post("/orders", orderHandler.CreateOrder)
			r.Get("/orders", orderHandler.ListMyOrders)
			r.Get("/orders/{id}", orderHandler.GetOrder)

			r.Post("/reviews", reviewHandler.SubmitReview)
		})

		// Admin routes.
		r.Route("/admin", func(r chi.Router) {
			r.Use(authn)
			r.Use(adminOnly)

			r.Post("/products", productHandler.CreateProduct)
			r.Put("/products/{id}", productHandler.UpdateProduct)
			r.Delete("/products/{id}", productHandler.DeleteProduct)

			r.Get("/orders", orderHandler.ListAllOrders)
			r.Put("/orders/{id}/status", orderHandler.UpdateOrderStatus)

			r.Get("/users", userHandler.ListUsers)
			r.Get("/dashboard", dashboardHandler.GetStats)
		})
	})

	return r
}
