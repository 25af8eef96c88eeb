package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var ErrFeatureFlagNotFound = errors.New("feature flag not found")

// FeatureFlagRepository defines the interface for per-tenant feature
// flag data access
type FeatureFlagRepository interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.FeatureFlag, error)
	Get(ctx context.Context, tenantID uuid.UUID, key string) (*domain.FeatureFlag, error)
	Set(ctx context.Context, flag *domain.FeatureFlag) error
}

type featureFlagRepository struct {
	db *sql.DB
}

// NewFeatureFlagRepository creates a new instance of FeatureFlagRepository
func NewFeatureFlagRepository(db *sql.DB) FeatureFlagRepository {
	return &featureFlagRepository{db: db}
}

// ListByTenant retrieves all flags for a tenant, ordered by key
func (r *featureFlagRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.FeatureFlag, error) {
	query := `
		SELECT id, tenant_id, key, enabled, updated_at
		FROM feature_flags
		WHERE tenant_id = $1
		ORDER BY key ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature flags: %w", err)
	}
	defer rows.Close()

	flags := []domain.FeatureFlag{}
	for rows.Next() {
		var flag domain.FeatureFlag
		if err := rows.Scan(&flag.ID, &flag.TenantID, &flag.Key, &flag.Enabled, &flag.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feature flag: %w", err)
		}
		flags = append(flags, flag)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feature flags: %w", err)
	}

	return flags, nil
}

// Get retrieves a single flag by tenant and key
func (r *featureFlagRepository) Get(ctx context.Context, tenantID uuid.UUID, key string) (*domain.FeatureFlag, error) {
	query := `
		SELECT id, tenant_id, key, enabled, updated_at
		FROM feature_flags
		WHERE tenant_id = $1 AND key = $2
	`

	flag := &domain.FeatureFlag{}
	err := r.db.QueryRowContext(ctx, query, tenantID, key).Scan(
		&flag.ID,
		&flag.TenantID,
		&flag.Key,
		&flag.Enabled,
		&flag.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFeatureFlagNotFound
		}
		return nil, fmt.Errorf("failed to find feature flag: %w", err)
	}

	return flag, nil
}

// Set upserts a flag on its (tenant_id, key) unique constraint
func (r *featureFlagRepository) Set(ctx context.Context, flag *domain.FeatureFlag) error {
	query := `
		INSERT INTO feature_flags (id, tenant_id, key, enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, key)
		DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		flag.ID,
		flag.TenantID,
		flag.Key,
		flag.Enabled,
		flag.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to set feature flag: %w", err)
	}

	return nil
}
