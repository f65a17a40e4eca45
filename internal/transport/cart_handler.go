package transport

import (
	"errors"
	"fmt"
	"net/http"

	"joules-shop/internal/cart"
	"joules-shop/internal/catalog"
	"joules-shop/internal/domain"
	"joules-shop/internal/middleware"
	"joules-shop/internal/pricing"
	"joules-shop/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddItemRequest represents the add-to-cart payload.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// UpdateItemRequest represents the quantity-update payload. A quantity of
// zero or less removes the item.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse is the cart rendered for the presentation layer.
type CartResponse struct {
	Items     []domain.CartItem `json:"items"`
	Total     string            `json:"total"`
	ItemCount int               `json:"item_count"`
	Message   string            `json:"message,omitempty"`
}

// CartHandler handles HTTP requests for cart operations. Every request is
// scoped to the session established by the session middleware.
type CartHandler struct {
	registry *cart.Registry
	catalog  catalog.Catalog
	sessions session.Store
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(registry *cart.Registry, cat catalog.Catalog, sessions session.Store, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		registry: registry,
		catalog:  cat,
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.View)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.UpdateItem)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
}

// View returns the cart contents, the computed total and any pending flash
// message. Consuming the flash empties the one-shot slot.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	store, sessionID, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	message, err := h.sessions.ConsumeFlash(r.Context(), sessionID)
	if err != nil {
		h.logger.Warn("Failed to consume flash message", zap.Error(err))
	}

	items := store.Items()
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items:     items,
		Total:     pricing.FormatTotal(items),
		ItemCount: store.Count(),
		Message:   message,
	})
}

// AddItem puts one unit of a product into the cart.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	store, sessionID, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if fields := middleware.FormatValidationErrors(err); len(fields) > 0 {
			middleware.RespondWithFieldErrors(w, "validation failed", fields)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := store.Add(r.Context(), h.catalog, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to add item to cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item to cart")
		return
	}

	h.flash(r, sessionID, fmt.Sprintf("%s added to cart!", item.Name))

	h.logger.Info("Item added to cart",
		zap.String("session_id", sessionID),
		zap.String("product_id", item.ProductID),
		zap.Int("quantity", item.Quantity),
	)
	middleware.RespondWithJSON(w, http.StatusOK, item)
}

// UpdateItem overwrites a line's quantity; zero or less removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	store, sessionID, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")

	var req UpdateItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetQuantity(productID, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "item not found in cart")
			return
		}
		h.logger.Error("Failed to update cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart item")
		return
	}

	if req.Quantity > 0 {
		h.flash(r, sessionID, fmt.Sprintf("Quantity updated to %d.", req.Quantity))
	} else {
		h.flash(r, sessionID, "Item removed from cart.")
	}

	items := store.Items()
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items:     items,
		Total:     pricing.FormatTotal(items),
		ItemCount: store.Count(),
	})
}

// RemoveItem deletes a line from the cart.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, sessionID, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")

	removed, err := store.Remove(productID)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "item not found in cart")
			return
		}
		h.logger.Error("Failed to remove cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove cart item")
		return
	}

	h.flash(r, sessionID, fmt.Sprintf("%s removed from cart.", removed.Name))

	items := store.Items()
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items:     items,
		Total:     pricing.FormatTotal(items),
		ItemCount: store.Count(),
	})
}

func (h *CartHandler) sessionStore(w http.ResponseWriter, r *http.Request) (*cart.Store, string, bool) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		h.logger.Error("Session ID not found in context")
		middleware.RespondWithError(w, http.StatusInternalServerError, "session not established")
		return nil, "", false
	}
	return h.registry.Get(sessionID), sessionID, true
}

func (h *CartHandler) flash(r *http.Request, sessionID, message string) {
	if err := h.sessions.Flash(r.Context(), sessionID, message); err != nil {
		h.logger.Warn("Failed to store flash message", zap.Error(err))
	}
}
