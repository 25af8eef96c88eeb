package domain

import (
	"time"

	"github.com/google/uuid"
)

// TenantStatus is the lifecycle state of a tenant account.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant represents an independent merchant account. The subdomain is the
// left-most label of the storefront host and is globally unique.
type Tenant struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Subdomain string       `json:"subdomain" db:"subdomain"`
	Plan      string       `json:"plan" db:"plan"`
	Status    TenantStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// FeatureFlag is a per-tenant boolean switch managed from the platform
// console.
type FeatureFlag struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Key       string    `json:"key" db:"key"`
	Enabled   bool      `json:"enabled" db:"enabled"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
