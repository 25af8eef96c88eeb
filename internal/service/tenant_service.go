package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidSubdomain  = errors.New("subdomain may only contain lowercase letters, digits and hyphens")
	ErrReservedSubdomain = errors.New("subdomain is reserved")
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// reservedSubdomains can never be claimed by a tenant because the
// platform routes them itself.
var reservedSubdomains = map[string]bool{
	"www":      true,
	"api":      true,
	"admin":    true,
	"platform": true,
	"app":      true,
	"status":   true,
}

// TenantService defines the platform console operations over tenants
// and their feature flags.
type TenantService interface {
	Provision(ctx context.Context, name, subdomain, plan string) (*domain.Tenant, error)
	GetTenant(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	ListTenants(ctx context.Context, page, pageSize int) ([]*domain.Tenant, int, error)
	Suspend(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) error
	ListFlags(ctx context.Context, tenantID uuid.UUID) ([]domain.FeatureFlag, error)
	SetFlag(ctx context.Context, tenantID uuid.UUID, key string, enabled bool) (*domain.FeatureFlag, error)
	IsFeatureEnabled(ctx context.Context, tenantID uuid.UUID, key string) (bool, error)
}

type tenantService struct {
	tenantRepo repository.TenantRepository
	flagRepo   repository.FeatureFlagRepository
}

// NewTenantService creates a new instance of TenantService
func NewTenantService(tenantRepo repository.TenantRepository, flagRepo repository.FeatureFlagRepository) TenantService {
	return &tenantService{
		tenantRepo: tenantRepo,
		flagRepo:   flagRepo,
	}
}

// Provision creates a new active tenant after validating its subdomain
func (s *tenantService) Provision(ctx context.Context, name, subdomain, plan string) (*domain.Tenant, error) {
	if !subdomainPattern.MatchString(subdomain) {
		return nil, ErrInvalidSubdomain
	}
	if reservedSubdomains[subdomain] {
		return nil, ErrReservedSubdomain
	}
	if plan == "" {
		plan = "starter"
	}

	now := time.Now()
	tenant := &domain.Tenant{
		ID:        uuid.New(),
		Name:      name,
		Subdomain: subdomain,
		Plan:      plan,
		Status:    domain.TenantStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

// GetTenant retrieves a tenant by ID
func (s *tenantService) GetTenant(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return s.tenantRepo.FindByID(ctx, id)
}

// ListTenants retrieves tenants with pagination
func (s *tenantService) ListTenants(ctx context.Context, page, pageSize int) ([]*domain.Tenant, int, error) {
	return s.tenantRepo.List(ctx, page, pageSize)
}

// Suspend marks a tenant as suspended; its storefront stops resolving
func (s *tenantService) Suspend(ctx context.Context, id uuid.UUID) error {
	return s.tenantRepo.UpdateStatus(ctx, id, domain.TenantStatusSuspended)
}

// Activate re-activates a suspended tenant
func (s *tenantService) Activate(ctx context.Context, id uuid.UUID) error {
	return s.tenantRepo.UpdateStatus(ctx, id, domain.TenantStatusActive)
}

// ListFlags retrieves all feature flags for a tenant
func (s *tenantService) ListFlags(ctx context.Context, tenantID uuid.UUID) ([]domain.FeatureFlag, error) {
	return s.flagRepo.ListByTenant(ctx, tenantID)
}

// SetFlag upserts a feature flag for a tenant
func (s *tenantService) SetFlag(ctx context.Context, tenantID uuid.UUID, key string, enabled bool) (*domain.FeatureFlag, error) {
	if _, err := s.tenantRepo.FindByID(ctx, tenantID); err != nil {
		return nil, err
	}

	flag := &domain.FeatureFlag{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Key:       key,
		Enabled:   enabled,
		UpdatedAt: time.Now(),
	}

	if err := s.flagRepo.Set(ctx, flag); err != nil {
		return nil, fmt.Errorf("failed to set feature flag: %w", err)
	}

	return flag, nil
}

// IsFeatureEnabled reports a flag's state; an unset flag is disabled
func (s *tenantService) IsFeatureEnabled(ctx context.Context, tenantID uuid.UUID, key string) (bool, error) {
	flag, err := s.flagRepo.Get(ctx, tenantID, key)
	if err != nil {
		if err == repository.ErrFeatureFlagNotFound {
			return false, nil
		}
		return false, err
	}
	return flag.Enabled, nil
}
