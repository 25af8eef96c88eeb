package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest is the admin payload for creating or replacing a
// product. Numeric constraints are enforced by the service, not here;
// validator tags only cover shape.
type ProductRequest struct {
	Name              string           `json:"name" validate:"required,min=1,max=255"`
	Slug              string           `json:"slug" validate:"required,min=1,max=255"`
	Description       string           `json:"description"`
	ProductType       string           `json:"product_type" validate:"required,oneof=single variable digital"`
	Price             decimal.Decimal  `json:"price"`
	ComparePrice      *decimal.Decimal `json:"compare_price,omitempty"`
	TrackInventory    bool             `json:"track_inventory"`
	InventoryQuantity int              `json:"inventory_quantity"`
	ImageURL          string           `json:"image_url"`
	Variants          []VariantRequest `json:"variants,omitempty" validate:"dive"`
}

// VariantRequest is one variant within a ProductRequest
type VariantRequest struct {
	Name              string           `json:"name" validate:"required,min=1,max=255"`
	SKU               string           `json:"sku" validate:"required,min=1,max=100"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	ComparePrice      *decimal.Decimal `json:"compare_price,omitempty"`
	InventoryQuantity int              `json:"inventory_quantity"`
	IsActive          bool             `json:"is_active"`
}

// ProductDetailResponse pairs a product with its variants for the
// admin editor.
type ProductDetailResponse struct {
	Product  *domain.Product  `json:"product"`
	Variants []domain.Variant `json:"variants"`
}

// ProductHandler serves the merchant admin CRUD over a tenant's
// catalog. The tenant scope comes from the merchant's token, not from
// the request host.
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers the admin product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.CreateProduct)
		r.Get("/{id}", h.GetProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
}

// tenantScope extracts the merchant's tenant from the token claims
func (h *ProductHandler) tenantScope(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw, ok := middleware.GetUserTenantID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusForbidden, "token carries no tenant scope")
		return uuid.Nil, false
	}

	tenantID, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Error("Malformed tenant claim", zap.String("tenant_id", raw))
		middleware.RespondWithError(w, http.StatusForbidden, "token carries no tenant scope")
		return uuid.Nil, false
	}

	return tenantID, true
}

// CreateProduct handles product creation for the merchant's tenant
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	input, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), tenantID, input)
	if err != nil {
		h.respondProductError(w, err, "Failed to create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// GetProduct returns a product with its variants for editing
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, variants, err := h.productService.GetProduct(r.Context(), tenantID, productID)
	if err != nil {
		h.respondProductError(w, err, "Failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductDetailResponse{
		Product:  product,
		Variants: variants,
	})
}

// UpdateProduct replaces a product and its variant collection
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	input, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), tenantID, productID, input)
	if err != nil {
		h.respondProductError(w, err, "Failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product from the merchant's catalog
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), tenantID, productID); err != nil {
		h.respondProductError(w, err, "Failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *ProductHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return service.ProductInput{}, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return service.ProductInput{}, false
	}

	input := service.ProductInput{
		Name:              req.Name,
		Slug:              req.Slug,
		Description:       req.Description,
		ProductType:       domain.ProductType(req.ProductType),
		Price:             req.Price,
		ComparePrice:      req.ComparePrice,
		TrackInventory:    req.TrackInventory,
		InventoryQuantity: req.InventoryQuantity,
		ImageURL:          req.ImageURL,
	}

	for _, v := range req.Variants {
		input.Variants = append(input.Variants, service.VariantInput{
			Name:              v.Name,
			SKU:               v.SKU,
			Price:             v.Price,
			ComparePrice:      v.ComparePrice,
			InventoryQuantity: v.InventoryQuantity,
			IsActive:          v.IsActive,
		})
	}

	return input, true
}

func (h *ProductHandler) respondProductError(w http.ResponseWriter, err error, logMsg string) {
	switch err {
	case repository.ErrProductNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case repository.ErrSlugTaken:
		middleware.RespondWithError(w, http.StatusConflict, "slug already in use")
	case service.ErrInvalidProductType,
		service.ErrInvalidSlug,
		service.ErrNegativePrice,
		service.ErrNegativeInventory,
		service.ErrVariantsNotAllowed:
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
