package transport

import (
	"errors"
	"net/http"

	"joules-shop/internal/cart"
	"joules-shop/internal/domain"
	"joules-shop/internal/middleware"
	"joules-shop/internal/repository"
	"joules-shop/internal/service"
	"joules-shop/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutRequest carries the shipping details submitted at checkout.
type CheckoutRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// CheckoutFailureResponse is returned when shipping validation fails. The
// submitted values come back so the form can be re-populated.
type CheckoutFailureResponse struct {
	Message   string              `json:"message"`
	Errors    map[string]string   `json:"errors"`
	Submitted domain.ShippingInfo `json:"submitted"`
}

// OrderHandler handles HTTP requests for checkout and order history.
type OrderHandler struct {
	orders   service.OrderService
	registry *cart.Registry
	sessions session.Store
	logger   *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders service.OrderService, registry *cart.Registry, sessions session.Store, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		registry: registry,
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers the order routes. All of them require an
// authenticated user; completion additionally requires the admin role.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.Checkout)
		r.Get("/", h.List)
		r.Get("/{orderID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(h.logger))
			r.Post("/{orderID}/complete", h.Complete)
		})
	})
}

// Checkout places an order from the session's cart.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		h.logger.Error("Session ID not found in context")
		middleware.RespondWithError(w, http.StatusInternalServerError, "session not established")
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	info := domain.ShippingInfo{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	}

	store := h.registry.Get(sessionID)
	order, err := h.orders.PlaceOrder(r.Context(), store, userID, info)
	if err != nil {
		h.respondCheckoutError(w, r, sessionID, err)
		return
	}

	if ferr := h.sessions.Flash(r.Context(), sessionID, "Order placed successfully!"); ferr != nil {
		h.logger.Warn("Failed to store flash message", zap.Error(ferr))
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.OrderID),
		zap.String("user_id", userID),
		zap.String("total", order.TotalPrice),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) respondCheckoutError(w http.ResponseWriter, r *http.Request, sessionID string, err error) {
	var validationErr *service.ShippingValidationError
	switch {
	case errors.As(err, &validationErr):
		middleware.RespondWithJSON(w, http.StatusBadRequest, CheckoutFailureResponse{
			Message:   validationErr.Error(),
			Errors:    validationErr.Fields,
			Submitted: validationErr.Info,
		})
	case errors.Is(err, service.ErrEmptyCart):
		middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, service.ErrPersistence):
		h.logger.Error("Failed to persist order",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order, please try again")
	default:
		h.logger.Error("Failed to place order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
	}
}

// List returns the authenticated user's order history.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Get returns one order. Customers can only read their own orders; admins
// can read any.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orderID := chi.URLParam(r, "orderID")

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	role, _ := middleware.GetUserRole(r.Context())
	if order.UserID != userID && role != "admin" {
		middleware.RespondWithError(w, http.StatusForbidden, "access denied")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// Complete marks a pending order as completed.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	if err := h.orders.CompleteOrder(r.Context(), orderID); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, repository.ErrIllegalTransition):
			middleware.RespondWithError(w, http.StatusConflict, "order is not pending")
		default:
			h.logger.Error("Failed to complete order", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to complete order")
		}
		return
	}

	h.logger.Info("Order completed", zap.String("order_id", orderID))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{
		"order_id": orderID,
		"status":   string(domain.StatusCompleted),
	})
}
