package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductType determines where pricing and stock authority lives. For
// single and digital products the fields on the product row are
// authoritative; for variable products authority is delegated to the
// active variants.
type ProductType string

const (
	ProductTypeSingle   ProductType = "single"
	ProductTypeVariable ProductType = "variable"
	ProductTypeDigital  ProductType = "digital"
)

// Valid reports whether t is one of the known product types.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeSingle, ProductTypeVariable, ProductTypeDigital:
		return true
	}
	return false
}

// Product represents a catalog product owned by a tenant. Slug is unique
// within the tenant, not globally.
type Product struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	TenantID          uuid.UUID        `json:"tenant_id" db:"tenant_id"`
	Name              string           `json:"name" db:"name"`
	Slug              string           `json:"slug" db:"slug"`
	Description       string           `json:"description" db:"description"`
	ProductType       ProductType      `json:"product_type" db:"product_type"`
	Price             decimal.Decimal  `json:"price" db:"price"`
	ComparePrice      *decimal.Decimal `json:"compare_price" db:"compare_price"`
	TrackInventory    bool             `json:"track_inventory" db:"track_inventory"`
	InventoryQuantity int              `json:"inventory_quantity" db:"inventory_quantity"`
	ImageURL          string           `json:"image_url" db:"image_url"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}

// Variant is a purchasable SKU belonging to a variable product. Variants
// are created and deleted only through the parent product's edit flow and
// cascade-delete with it. A nil Price means the variant is not
// independently priced.
type Variant struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	ProductID         uuid.UUID        `json:"product_id" db:"product_id"`
	Name              string           `json:"name" db:"name"`
	SKU               string           `json:"sku" db:"sku"`
	Price             *decimal.Decimal `json:"price" db:"price"`
	ComparePrice      *decimal.Decimal `json:"compare_price" db:"compare_price"`
	InventoryQuantity int              `json:"inventory_quantity" db:"inventory_quantity"`
	IsActive          bool             `json:"is_active" db:"is_active"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}
