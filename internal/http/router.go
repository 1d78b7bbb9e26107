package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/gomarketplace/internal/cart"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(c cart.Cart, logger *slog.Logger, timeout time.Duration) chi.Router {
	cartHandler := NewCartHandler(logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(CartProvider(c))
		cartHandler.Routes(r)
	})

	return r
}
