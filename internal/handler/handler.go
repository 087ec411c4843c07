// Package handler exposes the storefront domain services over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/storefront-api/internal/domain/customer"
	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
)

// Handler holds the domain dependencies for all API endpoints.
type Handler struct {
	customers  *customer.Service
	orders     *order.Service
	orderStore order.Repository
	products   product.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	customers *customer.Service,
	orders *order.Service,
	orderStore order.Repository,
	products product.Repository,
) *Handler {
	return &Handler{
		customers:  customers,
		orders:     orders,
		orderStore: orderStore,
		products:   products,
	}
}

// NewRouter returns the chi router serving all /api routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/customers", h.CreateCustomer)
		r.Post("/orders", h.CreateOrder)
		r.Get("/orders/{id}", h.GetOrderByID)
		r.Get("/products", h.ListProducts)
	})

	return r
}
