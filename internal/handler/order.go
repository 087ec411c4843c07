package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/order"
)

// CreateOrder places a new order for a customer.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]order.LineRequest, len(req.Items))
	for i, line := range req.Items {
		items[i] = order.LineRequest{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
	}

	o, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		CustomerID: req.CustomerID,
		Items:      items,
	})
	if err != nil {
		mapOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// GetOrderByID returns a single order with its lines.
func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, err := h.orderStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// mapOrderError converts order placement errors to HTTP responses. Business
// validation failures map to 4xx; anything else is an infrastructure fault.
func mapOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		cnfErr *order.CustomerNotFoundError
		pnfErr *order.ProductsNotFoundError
		iqErr  *order.InvalidQuantityError
		isErr  *order.InsufficientStockError
	)

	switch {
	case errors.As(err, &cnfErr):
		writeError(w, http.StatusNotFound, cnfErr.Error())
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &iqErr):
		writeError(w, http.StatusUnprocessableEntity, iqErr.Error())
	case errors.Is(err, order.ErrNoProducts):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &pnfErr):
		writeError(w, http.StatusUnprocessableEntity, pnfErr.Error())
	case errors.As(err, &isErr):
		writeError(w, http.StatusUnprocessableEntity, isErr.Error())
	default:
		writeInternalError(w, r, err)
	}
}
