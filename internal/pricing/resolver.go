// Package pricing holds the single authoritative definition of derived
// price and stock for catalog products. Storefront listings, product
// detail responses and cart totals all go through these resolvers so the
// call sites can never drift apart.
//
// Every function here is a pure, total computation over a product and
// its variant collection: no I/O, no mutation, no error path. Malformed
// data (negative prices slipping past admin validation) is propagated
// arithmetically rather than rejected; validation belongs to the
// mutation path.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Range is the min/max spread of a variable product's variant prices.
// It is only ever produced when min != max; a single price point is not
// a range.
type Range struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Quote bundles everything the resolvers derive for one product so
// consumers resolve once per render instead of four times.
type Quote struct {
	EffectivePrice   decimal.Decimal  `json:"effective_price"`
	EffectiveCompare *decimal.Decimal `json:"effective_compare_price,omitempty"`
	PriceRange       *Range           `json:"price_range,omitempty"`
	OutOfStock       bool             `json:"out_of_stock"`
}

// ActiveVariants returns the subset of variants that currently count for
// any aggregation. Both the price and the stock resolvers filter through
// this one primitive; that they agree on what "active" means is a
// correctness property, not a style choice.
func ActiveVariants(variants []domain.Variant) []domain.Variant {
	active := make([]domain.Variant, 0, len(variants))
	for _, v := range variants {
		if v.IsActive {
			active = append(active, v)
		}
	}
	return active
}

// EffectivePrice resolves the price to display or charge as the
// "starting" price.
//
// For non-variable products the product's own price is authoritative and
// variants are ignored entirely. For variable products the minimum over
// active, validly priced variants wins. A variant with a nil or
// non-positive price is not a real price point and never contributes. A
// variable product with no valid price point resolves to zero, a
// deliberate degenerate default so the storefront always has a number to
// render.
func EffectivePrice(p *domain.Product, variants []domain.Variant) decimal.Decimal {
	if p.ProductType != domain.ProductTypeVariable {
		return p.Price
	}

	priced := pricedVariants(ActiveVariants(variants))
	if len(priced) == 0 {
		return decimal.Zero
	}

	min := *priced[0].Price
	for _, v := range priced[1:] {
		if v.Price.LessThan(min) {
			min = *v.Price
		}
	}
	return min
}

// EffectiveComparePrice resolves the "was" price shown struck through,
// or nil when none applies. A compare price is only surfaced when it is
// strictly greater than the effective price; equal or lower values are
// suppressed because they imply no discount. A variable product with no
// valid price point has nothing to discount against, so its compare
// price is nil regardless of what the variants carry.
func EffectiveComparePrice(p *domain.Product, variants []domain.Variant) *decimal.Decimal {
	effective := EffectivePrice(p, variants)

	if p.ProductType != domain.ProductTypeVariable {
		if p.ComparePrice != nil && p.ComparePrice.GreaterThan(effective) {
			compare := *p.ComparePrice
			return &compare
		}
		return nil
	}

	if len(pricedVariants(ActiveVariants(variants))) == 0 {
		return nil
	}

	var candidate *decimal.Decimal
	for _, v := range ActiveVariants(variants) {
		if v.ComparePrice == nil || !v.ComparePrice.IsPositive() {
			continue
		}
		if candidate == nil || v.ComparePrice.LessThan(*candidate) {
			compare := *v.ComparePrice
			candidate = &compare
		}
	}

	if candidate != nil && candidate.GreaterThan(effective) {
		return candidate
	}
	return nil
}

// PriceRange resolves the min/max spread across a variable product's
// active, validly priced variants. It is nil for non-variable products
// and nil when all valid price points collapse to a single value.
func PriceRange(p *domain.Product, variants []domain.Variant) *Range {
	if p.ProductType != domain.ProductTypeVariable {
		return nil
	}

	priced := pricedVariants(ActiveVariants(variants))
	if len(priced) == 0 {
		return nil
	}

	min, max := *priced[0].Price, *priced[0].Price
	for _, v := range priced[1:] {
		if v.Price.LessThan(min) {
			min = *v.Price
		}
		if v.Price.GreaterThan(max) {
			max = *v.Price
		}
	}

	if min.Equal(max) {
		return nil
	}
	return &Range{Min: min, Max: max}
}

// OutOfStock resolves the boolean that gates purchase actions.
//
// A variable product is out of stock when the summed inventory of its
// active variants is not positive, or when it has no active variants at
// all; the product's own inventory fields are ignored. A non-variable
// product is out of stock only when inventory tracking is enabled and
// its quantity is not positive; with tracking off it is never out of
// stock, whatever the quantity says.
func OutOfStock(p *domain.Product, variants []domain.Variant) bool {
	if p.ProductType == domain.ProductTypeVariable {
		active := ActiveVariants(variants)
		if len(active) == 0 {
			return true
		}
		total := 0
		for _, v := range active {
			total += v.InventoryQuantity
		}
		return total <= 0
	}

	if !p.TrackInventory {
		return false
	}
	return p.InventoryQuantity <= 0
}

// Resolve computes the full quote for one product in a single pass over
// its variants.
func Resolve(p *domain.Product, variants []domain.Variant) Quote {
	return Quote{
		EffectivePrice:   EffectivePrice(p, variants),
		EffectiveCompare: EffectiveComparePrice(p, variants),
		PriceRange:       PriceRange(p, variants),
		OutOfStock:       OutOfStock(p, variants),
	}
}

// pricedVariants keeps only variants carrying a real price point: a
// non-nil, strictly positive price.
func pricedVariants(variants []domain.Variant) []domain.Variant {
	priced := make([]domain.Variant, 0, len(variants))
	for _, v := range variants {
		if v.Price != nil && v.Price.IsPositive() {
			priced = append(priced, v)
		}
	}
	return priced
}
