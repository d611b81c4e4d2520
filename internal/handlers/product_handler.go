package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/storefront/internal/models"
	"github.com/Lixing-Zhang/storefront/internal/repository"
	"github.com/Lixing-Zhang/storefront/internal/service"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// ListProducts handles GET /products
// Returns {total, items}; image paths are relative to the CDN.
// Optional query: category (a label or kind), purchasable=true.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseProductFilter(r)
	if err != nil {
		h.logger.Warn("invalid product filter", "query", r.URL.RawQuery, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid filter", h.logger)
		return
	}

	list, err := h.service.ListProducts(ctx, filter)
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, list, h.logger)
}

// GetProduct handles GET /products/{productId}
// - 200: successful operation
// - 400: Invalid ID supplied
// - 404: Product not found
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := chi.URLParam(r, "productId")

	if productID == "" {
		h.logger.Warn("product ID is required")
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	product, err := h.service.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			h.logger.Info("product not found", "productId", productID)
			WriteError(w, http.StatusNotFound, "Product not found", h.logger)
			return
		}

		h.logger.Error("failed to get product", "productId", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

func parseProductFilter(r *http.Request) (service.ProductFilter, error) {
	var filter service.ProductFilter
	q := r.URL.Query()

	if category := q.Get("category"); category != "" {
		filter.Kind = categoryKind(category)
	}
	if v := q.Get("purchasable"); v != "" {
		purchasable, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.Wrap(err, "purchasable")
		}
		filter.Purchasable = purchasable
	}
	return filter, nil
}

// categoryKind accepts a kind name as well as any category label
func categoryKind(category string) models.CategoryKind {
	switch kind := models.CategoryKind(category); kind {
	case models.CategorySoft, models.CategoryHard, models.CategoryOther,
		models.CategoryAdditional, models.CategoryButton:
		return kind
	}
	return models.KindOf(category)
}
