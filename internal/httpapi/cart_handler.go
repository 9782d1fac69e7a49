package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/YadneshBamne/HoLo/internal/cart"
	"github.com/YadneshBamne/HoLo/internal/catalog"
	"github.com/YadneshBamne/HoLo/internal/domain"
	"github.com/YadneshBamne/HoLo/internal/session"
	"github.com/go-chi/chi/v5"
)

const maxQuantity = 99

type productGetter interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}

type CartHandler struct {
	carts    *cart.Manager
	products productGetter
	timeout  time.Duration
}

func NewCartHandler(carts *cart.Manager, products productGetter, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:    carts,
		products: products,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// CartView is the rendered cart: line items plus the derived totals.
type CartView struct {
	Items []domain.LineItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

func viewOf(store *cart.Store) CartView {
	return CartView{
		Items: store.Items(),
		Total: store.Total(),
		Count: store.Count(),
	}
}

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	sessionID := session.FromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return nil, false
	}
	return h.carts.Store(r.Context(), sessionID), true
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, viewOf(store))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.products.GetProduct(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to validate product")
		return
	}

	if err := store.Add(ctx, *product, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrOutOfStock) {
			respondError(w, http.StatusConflict, "out_of_stock", "product is out of stock")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add item")
		return
	}

	respondJSON(w, http.StatusCreated, viewOf(store))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	// Zero or negative removes the line item.
	store.SetQuantity(ctx, productID, req.Quantity)

	respondJSON(w, http.StatusOK, viewOf(store))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	store.Remove(ctx, productID)

	respondJSON(w, http.StatusOK, viewOf(store))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	store.Clear(ctx)

	respondJSON(w, http.StatusOK, viewOf(store))
}
