package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fjod/gomarketplace/internal/cart"
	"github.com/fjod/gomarketplace/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	validate *validator.Validate
	logger   *slog.Logger
}

func NewCartHandler(logger *slog.Logger) *CartHandler {
	return &CartHandler{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

type AddItemRequestDTO struct {
	ID       string  `json:"id" validate:"required,max=128"`
	Title    string  `json:"title" validate:"max=256"`
	ImageURL string  `json:"image_url" validate:"max=2048"`
	Price    float64 `json:"price" validate:"gte=0"`
}

type CartResponse struct {
	Items         domain.Snapshot `json:"items"`
	TotalQuantity int             `json:"total_quantity"`
	Subtotal      float64         `json:"subtotal"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Routes mounts the cart endpoints on r. The cart itself comes from the
// request context, so r must sit behind CartProvider.
func (h *CartHandler) Routes(r chi.Router) {
	r.Get("/", h.GetCart)
	r.Post("/items", h.AddItem)
	r.Post("/items/{id}/increment", h.Increment)
	r.Post("/items/{id}/decrement", h.Decrement)
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cartFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(c.Items()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cartFromRequest(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product", err.Error())
		return
	}

	items := c.AddToCart(domain.Product{
		ID:       req.ID,
		Title:    req.Title,
		ImageURL: req.ImageURL,
		Price:    req.Price,
	})
	respondJSON(w, http.StatusCreated, newCartResponse(items))
}

func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cartFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(c.Increment(chi.URLParam(r, "id"))))
}

func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cartFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(c.Decrement(chi.URLParam(r, "id"))))
}

func (h *CartHandler) cartFromRequest(w http.ResponseWriter, r *http.Request) (cart.Cart, bool) {
	c, err := cart.FromContext(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "cart handler mounted without provider",
			"path", r.URL.Path, "request_id", getRequestID(r.Context()), "error", err)
		respondError(w, http.StatusInternalServerError, "cart_unavailable", err.Error())
		return nil, false
	}
	return c, true
}

func newCartResponse(items domain.Snapshot) CartResponse {
	if items == nil {
		items = domain.Snapshot{}
	}
	return CartResponse{
		Items:         items,
		TotalQuantity: items.TotalQuantity(),
		Subtotal:      items.Subtotal(),
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
