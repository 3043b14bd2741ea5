package api

import (
	"net/http"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the REST surface under /api. Authentication must already
// have run; this only enforces it per route.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	staff := middleware.RequireRole(auth.RoleStaff)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)
		r.With(middleware.RequireAuth).Get("/me", h.me)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/facets", h.productFacets)
		r.Get("/{id}", h.getProduct)
		r.With(staff).Post("/", h.createProduct)
		r.With(staff).Put("/{id}", h.updateProduct)
		r.With(staff).Delete("/{id}", h.deleteProduct)
	})

	r.Post("/cart/quote", h.quoteCart)
	r.Get("/payment-methods", h.paymentMethods)

	r.Route("/orders", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", h.createOrder)
		r.Get("/my-orders", h.myOrders)
		r.Get("/me", h.myOrders)
		r.With(staff).Get("/all", h.allOrders)
		r.With(staff).Get("/", h.allOrders)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}/status", h.updateOrderStatus)
		r.Patch("/{id}/status", h.updateOrderStatus)
	})

	r.With(staff).Get("/reports/summary", h.salesSummary)
	r.With(staff).Get("/admin/metrics", h.metricsSnapshot)

	return r
}
