package transport

import (
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductListResponse is one page of the storefront catalog
type ProductListResponse struct {
	Products []service.ProductView `json:"products"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

// CatalogHandler serves the storefront read path. Every route requires a
// resolved tenant in the request context.
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers the storefront catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Get("/products/{slug}", h.GetProduct)
}

// ListProducts handles the storefront product listing, with optional
// full-text search via the q parameter.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.GetTenant(r.Context())
	if !ok {
		h.logger.Error("Tenant not found in context")
		middleware.RespondWithError(w, http.StatusNotFound, "storefront not found")
		return
	}

	page, pageSize := paginationParams(r)
	query := r.URL.Query().Get("q")

	var (
		views []service.ProductView
		total int
		err   error
	)

	if query != "" {
		views, total, err = h.catalogService.SearchProducts(r.Context(), tenant.ID, query, page, pageSize)
	} else {
		sortBy := r.URL.Query().Get("sort_by")
		sortOrder := repository.SortOrder(r.URL.Query().Get("sort_order"))
		views, total, err = h.catalogService.ListProducts(r.Context(), tenant.ID, page, pageSize, sortBy, sortOrder)
	}

	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: views,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetProduct handles the storefront product detail view
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.GetTenant(r.Context())
	if !ok {
		h.logger.Error("Tenant not found in context")
		middleware.RespondWithError(w, http.StatusNotFound, "storefront not found")
		return
	}

	slug := chi.URLParam(r, "slug")

	view, err := h.catalogService.GetProductBySlug(r.Context(), tenant.ID, slug)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// paginationParams parses page and page_size with sane bounds
func paginationParams(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = 20

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 && v <= 100 {
		pageSize = v
	}

	return page, pageSize
}
