package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartItemRequest identifies one cart line and, for mutations, its
// quantity.
type CartItemRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	VariantID *string `json:"variant_id,omitempty" validate:"omitempty,uuid"`
	Quantity  int     `json:"quantity"`
}

// CartHandler serves the storefront cart routes. Guests are identified
// by an opaque session header; authenticated customers by their user ID.
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers the storefront cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items", h.UpdateItem)
		r.Delete("/items", h.RemoveItem)
	})
}

// customerID resolves the cart owner: the authenticated user when
// present, otherwise the guest session header.
func (h *CartHandler) customerID(r *http.Request) string {
	if userID, ok := middleware.GetUserID(r.Context()); ok {
		return userID
	}
	return r.Header.Get("X-Cart-Session")
}

// GetCart returns the priced cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.GetTenant(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "storefront not found")
		return
	}

	customerID := h.customerID(r)
	if customerID == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing cart session")
		return
	}

	view, err := h.cartService.GetCart(r.Context(), tenant.ID, customerID)
	if err != nil {
		h.logger.Error("Failed to get cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// AddItem adds a product or variant line to the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, func(tenantID uuid.UUID, customerID string, req CartItemRequest, productID uuid.UUID, variantID *uuid.UUID) (*service.CartView, error) {
		return h.cartService.AddItem(r.Context(), tenantID, customerID, productID, variantID, req.Quantity)
	})
}

// UpdateItem sets a line's quantity
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, func(tenantID uuid.UUID, customerID string, req CartItemRequest, productID uuid.UUID, variantID *uuid.UUID) (*service.CartView, error) {
		return h.cartService.UpdateQuantity(r.Context(), tenantID, customerID, productID, variantID, req.Quantity)
	})
}

// RemoveItem drops a line from the cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, func(tenantID uuid.UUID, customerID string, req CartItemRequest, productID uuid.UUID, variantID *uuid.UUID) (*service.CartView, error) {
		return h.cartService.RemoveItem(r.Context(), tenantID, customerID, productID, variantID)
	})
}

// ClearCart deletes the whole cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.GetTenant(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "storefront not found")
		return
	}

	customerID := h.customerID(r)
	if customerID == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing cart session")
		return
	}

	if err := h.cartService.ClearCart(r.Context(), tenant.ID, customerID); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

type cartMutation func(tenantID uuid.UUID, customerID string, req CartItemRequest, productID uuid.UUID, variantID *uuid.UUID) (*service.CartView, error)

func (h *CartHandler) mutateCart(w http.ResponseWriter, r *http.Request, mutate cartMutation) {
	tenant, ok := middleware.GetTenant(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "storefront not found")
		return
	}

	customerID := h.customerID(r)
	if customerID == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing cart session")
		return
	}

	var req CartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Cart request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var variantID *uuid.UUID
	if req.VariantID != nil {
		id, err := uuid.Parse(*req.VariantID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid variant ID")
			return
		}
		variantID = &id
	}

	view, err := mutate(tenant.ID, customerID, req, productID, variantID)
	if err != nil {
		switch err {
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case service.ErrProductUnavailable:
			middleware.RespondWithError(w, http.StatusConflict, "product is out of stock")
		case service.ErrVariantNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "variant not found")
		case service.ErrInvalidQuantity:
			middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be positive")
		case service.ErrItemNotInCart:
			middleware.RespondWithError(w, http.StatusNotFound, "item not in cart")
		default:
			h.logger.Error("Cart mutation failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}
