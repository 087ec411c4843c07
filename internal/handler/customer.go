package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/customer"
)

// CreateCustomer registers a new customer.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.customers.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		mapCustomerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCustomerResponse(c))
}

// mapCustomerError converts customer registration errors to HTTP responses.
func mapCustomerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, customer.ErrEmailRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, customer.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeInternalError(w, r, err)
	}
}
