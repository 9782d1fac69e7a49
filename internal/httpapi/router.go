package httpapi

import (
	"net/http"
	"time"

	"github.com/YadneshBamne/HoLo/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Products       *ProductHandler
	Cart           *CartHandler
	Favorites      *FavoritesHandler
	Checkout       *CheckoutHandler
	SessionCookie  string
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(session.Middleware(cfg.SessionCookie))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", cfg.Products.List)
			r.Get("/featured", cfg.Products.Featured)
			r.Get("/search", cfg.Products.Search)
			r.Get("/{product_id}", cfg.Products.Get)
		})
		r.Get("/categories", cfg.Products.Categories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Cart.Get)
			r.Post("/items", cfg.Cart.AddItem)
			r.Put("/items/{product_id}", cfg.Cart.UpdateQuantity)
			r.Delete("/items/{product_id}", cfg.Cart.RemoveItem)
			r.Delete("/", cfg.Cart.Clear)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", cfg.Favorites.List)
			r.Post("/{product_id}/toggle", cfg.Favorites.Toggle)
			r.Delete("/", cfg.Favorites.Clear)
		})

		r.Post("/checkout", cfg.Checkout.Submit)
		r.Get("/orders/{order_id}", cfg.Checkout.GetOrder)
	})

	return otelhttp.NewHandler(r, "storefront")
}
