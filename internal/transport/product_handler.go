package transport

import (
	"errors"
	"net/http"

	"joules-shop/internal/catalog"
	"joules-shop/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler serves the read-only catalog.
type ProductHandler struct {
	catalog catalog.Catalog
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(cat catalog.Catalog, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: cat,
		logger:  logger,
	}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{productID}", h.Get)
	})
}

// List returns every catalog product.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get returns a single product.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	product, err := h.catalog.Find(r.Context(), productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to find product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to find product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}
