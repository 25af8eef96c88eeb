package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a single product (or variant) line in a cart. Quantities
// are clamped against available stock when the item is added; prices are
// resolved at read time, never stored here.
type CartItem struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int        `json:"quantity"`
}

// Cart is the volatile shopping cart for one customer on one storefront.
type Cart struct {
	TenantID   uuid.UUID  `json:"tenant_id"`
	CustomerID string     `json:"customer_id"`
	Items      []CartItem `json:"items"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
