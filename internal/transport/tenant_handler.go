package transport

import (
	"context"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProvisionTenantRequest is the platform payload for creating a tenant
type ProvisionTenantRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=255"`
	Subdomain string `json:"subdomain" validate:"required,min=1,max=63"`
	Plan      string `json:"plan" validate:"omitempty,oneof=starter growth enterprise"`
}

// SetFlagRequest toggles one feature flag for a tenant
type SetFlagRequest struct {
	Key     string `json:"key" validate:"required,min=1,max=100"`
	Enabled bool   `json:"enabled"`
}

// TenantListResponse is one page of tenants for the platform console
type TenantListResponse struct {
	Tenants  []*domain.Tenant `json:"tenants"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// TenantHandler serves the platform console. All routes are mounted
// behind RequirePlatformAdmin.
type TenantHandler struct {
	tenantService service.TenantService
	logger        *zap.Logger
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService service.TenantService, logger *zap.Logger) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
		logger:        logger,
	}
}

// RegisterRoutes registers the platform tenant routes
func (h *TenantHandler) RegisterRoutes(r chi.Router) {
	r.Route("/tenants", func(r chi.Router) {
		r.Post("/", h.ProvisionTenant)
		r.Get("/", h.ListTenants)
		r.Get("/{id}", h.GetTenant)
		r.Post("/{id}/suspend", h.SuspendTenant)
		r.Post("/{id}/activate", h.ActivateTenant)
		r.Get("/{id}/flags", h.ListFlags)
		r.Put("/{id}/flags", h.SetFlag)
	})
}

// ProvisionTenant creates a new tenant with an active storefront
func (h *TenantHandler) ProvisionTenant(w http.ResponseWriter, r *http.Request) {
	var req ProvisionTenantRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Provision request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenant, err := h.tenantService.Provision(r.Context(), req.Name, req.Subdomain, req.Plan)
	if err != nil {
		switch err {
		case service.ErrInvalidSubdomain, service.ErrReservedSubdomain:
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		case repository.ErrSubdomainTaken:
			middleware.RespondWithError(w, http.StatusConflict, "subdomain already in use")
		default:
			h.logger.Error("Failed to provision tenant", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to provision tenant")
		}
		return
	}

	h.logger.Info("Tenant provisioned",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("subdomain", tenant.Subdomain),
	)

	middleware.RespondWithJSON(w, http.StatusCreated, tenant)
}

// ListTenants returns a page of tenants
func (h *TenantHandler) ListTenants(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)

	tenants, total, err := h.tenantService.ListTenants(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list tenants", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, TenantListResponse{
		Tenants:  tenants,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetTenant returns one tenant by ID
func (h *TenantHandler) GetTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	tenant, err := h.tenantService.GetTenant(r.Context(), tenantID)
	if err != nil {
		h.respondTenantError(w, err, "Failed to get tenant")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, tenant)
}

// SuspendTenant takes a tenant's storefront offline
func (h *TenantHandler) SuspendTenant(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.tenantService.Suspend, "tenant suspended")
}

// ActivateTenant brings a suspended tenant back online
func (h *TenantHandler) ActivateTenant(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.tenantService.Activate, "tenant activated")
}

// ListFlags returns a tenant's feature flags
func (h *TenantHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	flags, err := h.tenantService.ListFlags(r.Context(), tenantID)
	if err != nil {
		h.respondTenantError(w, err, "Failed to list feature flags")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"flags": flags})
}

// SetFlag upserts one feature flag for a tenant
func (h *TenantHandler) SetFlag(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	var req SetFlagRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Flag request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flag, err := h.tenantService.SetFlag(r.Context(), tenantID, req.Key, req.Enabled)
	if err != nil {
		h.respondTenantError(w, err, "Failed to set feature flag")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, flag)
}

func (h *TenantHandler) tenantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid tenant ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *TenantHandler) setStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID) error, message string) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	if err := op(r.Context(), tenantID); err != nil {
		h.respondTenantError(w, err, "Failed to update tenant status")
		return
	}

	h.logger.Info("Tenant status changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("change", message),
	)

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (h *TenantHandler) respondTenantError(w http.ResponseWriter, err error, logMsg string) {
	if err == repository.ErrTenantNotFound {
		middleware.RespondWithError(w, http.StatusNotFound, "tenant not found")
		return
	}
	h.logger.Error(logMsg, zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}
