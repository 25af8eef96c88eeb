package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrSubdomainTaken      = errors.New("subdomain is already taken")
	ErrTenantNotActive     = errors.New("tenant is not active")
	ErrInvalidTenantStatus = errors.New("invalid tenant status")
)

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Tenant, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TenantStatus) error
}

type tenantRepository struct {
	db *sql.DB
}

// NewTenantRepository creates a new instance of TenantRepository
func NewTenantRepository(db *sql.DB) TenantRepository {
	return &tenantRepository{db: db}
}

// Create inserts a new tenant into the database using parameterized queries
func (r *tenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, subdomain, plan, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		tenant.ID,
		tenant.Name,
		tenant.Subdomain,
		tenant.Plan,
		tenant.Status,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "SQLSTATE 23505") {
			return ErrSubdomainTaken
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

// FindByID retrieves a tenant by ID using parameterized queries
func (r *tenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	query := `
		SELECT id, name, subdomain, plan, status, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`

	tenant := &domain.Tenant{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Subdomain,
		&tenant.Plan,
		&tenant.Status,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to find tenant by ID: %w", err)
	}

	return tenant, nil
}

// FindBySubdomain retrieves a tenant by its unique subdomain
func (r *tenantRepository) FindBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	query := `
		SELECT id, name, subdomain, plan, status, created_at, updated_at
		FROM tenants
		WHERE subdomain = $1
	`

	tenant := &domain.Tenant{}
	err := r.db.QueryRowContext(ctx, query, subdomain).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Subdomain,
		&tenant.Plan,
		&tenant.Status,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to find tenant by subdomain: %w", err)
	}

	return tenant, nil
}

// List retrieves tenants with pagination, newest first
func (r *tenantRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Tenant, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tenants: %w", err)
	}

	offset := (page - 1) * pageSize

	query := `
		SELECT id, name, subdomain, plan, status, created_at, updated_at
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := []*domain.Tenant{}
	for rows.Next() {
		tenant := &domain.Tenant{}
		err := rows.Scan(
			&tenant.ID,
			&tenant.Name,
			&tenant.Subdomain,
			&tenant.Plan,
			&tenant.Status,
			&tenant.CreatedAt,
			&tenant.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating tenants: %w", err)
	}

	return tenants, total, nil
}

// UpdateStatus changes a tenant's lifecycle status
func (r *tenantRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TenantStatus) error {
	query := `
		UPDATE tenants
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update tenant status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTenantNotFound
	}

	return nil
}
