package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/YadneshBamne/HoLo/internal/favorites"
	"github.com/YadneshBamne/HoLo/internal/session"
	"github.com/go-chi/chi/v5"
)

type FavoritesHandler struct {
	favorites *favorites.Service
	timeout   time.Duration
}

func NewFavoritesHandler(svc *favorites.Service, timeout time.Duration) *FavoritesHandler {
	return &FavoritesHandler{
		favorites: svc,
		timeout:   timeout,
	}
}

type FavoritesView struct {
	ProductIDs []string `json:"product_ids"`
}

type ToggleResponseDTO struct {
	ProductID  string `json:"product_id"`
	IsFavorite bool   `json:"is_favorite"`
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := session.FromContext(r.Context())
	if id == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return "", false
	}
	return id, true
}

func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	ids, err := h.favorites.List(ctx, sid)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "failed to list favorites")
		return
	}
	if ids == nil {
		ids = []string{}
	}

	respondJSON(w, http.StatusOK, FavoritesView{ProductIDs: ids})
}

func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	isFav, err := h.favorites.Toggle(ctx, sid, productID)
	if err != nil {
		// Membership was not flipped, the client may simply retry.
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "failed to update favorites, please try again")
		return
	}

	respondJSON(w, http.StatusOK, ToggleResponseDTO{ProductID: productID, IsFavorite: isFav})
}

func (h *FavoritesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := h.favorites.Clear(ctx, sid); err != nil {
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "failed to clear favorites")
		return
	}

	respondJSON(w, http.StatusOK, FavoritesView{ProductIDs: []string{}})
}
