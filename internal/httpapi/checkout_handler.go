package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/YadneshBamne/HoLo/internal/cart"
	"github.com/YadneshBamne/HoLo/internal/checkout"
	"github.com/YadneshBamne/HoLo/internal/domain"
	"github.com/YadneshBamne/HoLo/internal/orders"
	"github.com/YadneshBamne/HoLo/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CheckoutHandler struct {
	carts    *cart.Manager
	checkout *checkout.Service
	orders   orders.Repository
	timeout  time.Duration
}

func NewCheckoutHandler(carts *cart.Manager, svc *checkout.Service, repo orders.Repository, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		carts:    carts,
		checkout: svc,
		orders:   repo,
		timeout:  timeout,
	}
}

// Submit places an order from the session's cart. A failure leaves the cart
// as it was so the client can resubmit.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := session.FromContext(r.Context())
	if sid == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	var form domain.CheckoutForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store := h.carts.Store(ctx, sid)
	order, err := h.checkout.Submit(ctx, store, form)
	switch {
	case errors.Is(err, domain.ErrInvalidForm):
		respondError(w, http.StatusBadRequest, "invalid_form", err.Error())
		return
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", "cart is empty")
		return
	case err != nil:
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "failed to place order, please try again")
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	order, err := h.orders.GetOrderByID(ctx, id)
	if errors.Is(err, orders.ErrOrderNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}
