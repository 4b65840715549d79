package http

import (
	"net/http"

	"github.com/fjod/takes-and-tastes/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every API route.
func NewRouter(restaurants *RestaurantHandler, orders *OrdersHandler, sessions SessionLookup) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	auth := AuthMiddleware(sessions)

	r.Route("/api", func(r chi.Router) {
		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", restaurants.List)
			r.Get("/categories/all", restaurants.Categories)
			r.Get("/{id}", restaurants.Get)
			r.Get("/{id}/menu", restaurants.Menu)

			r.Group(func(r chi.Router) {
				r.Use(auth, AdminOnly)
				r.Post("/", restaurants.Create)
				r.Post("/{id}/menu", restaurants.CreateMenuItem)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(auth)
			r.Post("/", orders.Create)
			r.Get("/", orders.List)
			r.With(AdminOnly).Get("/admin/all", orders.ListAll)
			r.Get("/{id}", orders.Get)
			r.With(AdminOnly).Put("/{id}/status", orders.UpdateStatus)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Route not found")
	})

	return r
}
