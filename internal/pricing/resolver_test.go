package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func variableProduct() *domain.Product {
	return &domain.Product{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		Name:        "Test Product",
		Slug:        "test-product",
		ProductType: domain.ProductTypeVariable,
		// Deliberately misleading values: must be ignored for variable
		// products per the delegation rule.
		Price:             dec("999.99"),
		TrackInventory:    true,
		InventoryQuantity: 500,
	}
}

func variant(price *decimal.Decimal, compare *decimal.Decimal, qty int, active bool) domain.Variant {
	return domain.Variant{
		ID:                uuid.New(),
		Name:              "variant",
		Price:             price,
		ComparePrice:      compare,
		InventoryQuantity: qty,
		IsActive:          active,
	}
}

// zipVariants builds a variant list from parallel primitive slices,
// truncated to the shortest. Zero prices become nil price pointers so
// generated data exercises both "unpriced" encodings.
func zipVariants(prices []float64, actives []bool, qtys []int) []domain.Variant {
	n := len(prices)
	if len(actives) < n {
		n = len(actives)
	}
	if len(qtys) < n {
		n = len(qtys)
	}

	variants := make([]domain.Variant, 0, n)
	for i := 0; i < n; i++ {
		var price *decimal.Decimal
		if prices[i] != 0 {
			d := decimal.NewFromFloat(prices[i])
			price = &d
		}
		variants = append(variants, variant(price, nil, qtys[i], actives[i]))
	}
	return variants
}

func TestEffectivePrice_SingleProduct(t *testing.T) {
	product := &domain.Product{
		ProductType:       domain.ProductTypeSingle,
		Price:             dec("20"),
		ComparePrice:      decPtr("25"),
		TrackInventory:    true,
		InventoryQuantity: 3,
	}

	// Scenario 1: single product passes through its own fields.
	if got := EffectivePrice(product, nil); !got.Equal(dec("20")) {
		t.Errorf("EffectivePrice = %s, want 20", got)
	}
	compare := EffectiveComparePrice(product, nil)
	if compare == nil || !compare.Equal(dec("25")) {
		t.Errorf("EffectiveComparePrice = %v, want 25", compare)
	}
	if r := PriceRange(product, nil); r != nil {
		t.Errorf("PriceRange = %v, want nil", r)
	}
	if OutOfStock(product, nil) {
		t.Error("OutOfStock = true, want false")
	}
}

func TestEffectivePrice_VariableWithMixedVariants(t *testing.T) {
	// Scenario 2: min over active priced variants, inactive ignored.
	product := variableProduct()
	variants := []domain.Variant{
		variant(decPtr("10"), nil, 0, true),
		variant(decPtr("15"), nil, 5, true),
		variant(decPtr("5"), nil, 100, false),
	}

	if got := EffectivePrice(product, variants); !got.Equal(dec("10")) {
		t.Errorf("EffectivePrice = %s, want 10", got)
	}

	r := PriceRange(product, variants)
	if r == nil {
		t.Fatal("PriceRange = nil, want {10, 15}")
	}
	if !r.Min.Equal(dec("10")) || !r.Max.Equal(dec("15")) {
		t.Errorf("PriceRange = {%s, %s}, want {10, 15}", r.Min, r.Max)
	}

	// Total active quantity is 5.
	if OutOfStock(product, variants) {
		t.Error("OutOfStock = true, want false")
	}
}

func TestOutOfStock_VariableAllActiveDepleted(t *testing.T) {
	// Scenario 3: same shape as above but both active variants empty.
	product := variableProduct()
	variants := []domain.Variant{
		variant(decPtr("10"), nil, 0, true),
		variant(decPtr("15"), nil, 0, true),
		variant(decPtr("5"), nil, 100, false),
	}

	if !OutOfStock(product, variants) {
		t.Error("OutOfStock = false, want true")
	}
}

func TestResolve_VariableNoActiveVariants(t *testing.T) {
	// Scenario 4: the degenerate default. No active variants resolves
	// to price zero, no range, out of stock.
	product := variableProduct()
	variants := []domain.Variant{
		variant(decPtr("12"), nil, 10, false),
	}

	quote := Resolve(product, variants)
	if !quote.EffectivePrice.Equal(decimal.Zero) {
		t.Errorf("EffectivePrice = %s, want 0", quote.EffectivePrice)
	}
	if quote.EffectiveCompare != nil {
		t.Errorf("EffectiveCompare = %v, want nil", quote.EffectiveCompare)
	}
	if quote.PriceRange != nil {
		t.Errorf("PriceRange = %v, want nil", quote.PriceRange)
	}
	if !quote.OutOfStock {
		t.Error("OutOfStock = false, want true")
	}
}

func TestEffectiveComparePrice_VariableNoPricePoints(t *testing.T) {
	// The degenerate default is terminal: a variable product whose
	// active variants carry compare prices but no real price points must
	// not surface a "was" price against the zero effective price.
	product := variableProduct()
	variants := []domain.Variant{
		variant(nil, decPtr("50"), 5, true),
	}

	if got := EffectiveComparePrice(product, variants); got != nil {
		t.Errorf("EffectiveComparePrice = %s, want nil when no priced variants exist", got)
	}

	quote := Resolve(product, variants)
	if !quote.EffectivePrice.Equal(decimal.Zero) {
		t.Errorf("EffectivePrice = %s, want 0", quote.EffectivePrice)
	}
	if quote.EffectiveCompare != nil {
		t.Errorf("EffectiveCompare = %v, want nil", quote.EffectiveCompare)
	}
	if quote.PriceRange != nil {
		t.Errorf("PriceRange = %v, want nil", quote.PriceRange)
	}
}

func TestEffectiveComparePrice_NotGreaterThanPrice(t *testing.T) {
	// Scenario 5: compare price at or below the effective price is
	// suppressed, never surfaced raw.
	product := variableProduct()
	variants := []domain.Variant{
		variant(decPtr("30"), decPtr("20"), 5, true),
	}

	if got := EffectiveComparePrice(product, variants); got != nil {
		t.Errorf("EffectiveComparePrice = %s, want nil", got)
	}
}

func TestEffectiveComparePrice_VariableSurfaced(t *testing.T) {
	product := variableProduct()
	variants := []domain.Variant{
		variant(decPtr("10"), decPtr("18"), 5, true),
		variant(decPtr("15"), decPtr("25"), 5, true),
	}

	got := EffectiveComparePrice(product, variants)
	if got == nil || !got.Equal(dec("18")) {
		t.Errorf("EffectiveComparePrice = %v, want 18", got)
	}
}

func TestEffectiveComparePrice_EqualSuppressed(t *testing.T) {
	product := &domain.Product{
		ProductType:  domain.ProductTypeSingle,
		Price:        dec("20"),
		ComparePrice: decPtr("20"),
	}

	if got := EffectiveComparePrice(product, nil); got != nil {
		t.Errorf("EffectiveComparePrice = %s, want nil for equal compare", got)
	}
}

func TestPriceRange_SinglePricePoint(t *testing.T) {
	product := variableProduct()
	variants := []domain.Variant{
		variant(decPtr("10"), nil, 1, true),
		variant(decPtr("10"), nil, 2, true),
		variant(nil, nil, 3, true),
	}

	if r := PriceRange(product, variants); r != nil {
		t.Errorf("PriceRange = %v, want nil when all prices collapse", r)
	}
}

func TestOutOfStock_DigitalUntracked(t *testing.T) {
	product := &domain.Product{
		ProductType:       domain.ProductTypeDigital,
		Price:             dec("9.99"),
		TrackInventory:    false,
		InventoryQuantity: -3,
	}

	if OutOfStock(product, nil) {
		t.Error("OutOfStock = true for untracked product, want false")
	}
}

func TestActiveVariants_Filter(t *testing.T) {
	variants := []domain.Variant{
		variant(decPtr("1"), nil, 1, true),
		variant(decPtr("2"), nil, 1, false),
		variant(decPtr("3"), nil, 1, true),
	}

	active := ActiveVariants(variants)
	if len(active) != 2 {
		t.Fatalf("len(ActiveVariants) = %d, want 2", len(active))
	}
	for _, v := range active {
		if !v.IsActive {
			t.Error("ActiveVariants returned an inactive variant")
		}
	}
}

// Property 1: non-variable products pass their own price through and
// never produce a range, no matter what variants are attached.
func TestProperty_SingleProductPassthrough(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("variants attached to a non-variable product are ignored", prop.ForAll(
		func(price float64, prices []float64, actives []bool, qtys []int) bool {
			product := &domain.Product{
				ProductType: domain.ProductTypeSingle,
				Price:       decimal.NewFromFloat(price),
			}
			variants := zipVariants(prices, actives, qtys)

			if !EffectivePrice(product, variants).Equal(product.Price) {
				return false
			}
			return PriceRange(product, variants) == nil
		},
		gen.Float64Range(0.01, 9999.99),
		gen.SliceOf(gen.Float64Range(0, 9999.99)),
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.IntRange(-10, 100)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property 2: a surfaced compare price is always strictly greater than
// the effective price.
func TestProperty_ComparePriceSuppression(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("compare price is nil or strictly above effective price", prop.ForAll(
		func(prices []float64, compares []float64, actives []bool) bool {
			n := len(prices)
			if len(compares) < n {
				n = len(compares)
			}
			if len(actives) < n {
				n = len(actives)
			}

			variants := make([]domain.Variant, 0, n)
			for i := 0; i < n; i++ {
				var price, compare *decimal.Decimal
				if prices[i] != 0 {
					d := decimal.NewFromFloat(prices[i])
					price = &d
				}
				if compares[i] != 0 {
					d := decimal.NewFromFloat(compares[i])
					compare = &d
				}
				variants = append(variants, variant(price, compare, 1, actives[i]))
			}

			product := variableProduct()
			effective := EffectivePrice(product, variants)
			surfaced := EffectiveComparePrice(product, variants)

			return surfaced == nil || surfaced.GreaterThan(effective)
		},
		gen.SliceOf(gen.Float64Range(0, 500)),
		gen.SliceOf(gen.Float64Range(0, 500)),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property 3: an inactive variant can never lower the effective price.
func TestProperty_InactiveExclusion(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("adding a cheaper inactive variant changes nothing", prop.ForAll(
		func(prices []float64, qtys []int, cheapFraction float64) bool {
			actives := make([]bool, len(prices))
			for i := range actives {
				actives[i] = true
			}
			variants := zipVariants(prices, actives, qtys)

			product := variableProduct()
			before := EffectivePrice(product, variants)

			// Strictly cheaper than every active variant, but inactive.
			cheaper := before.Mul(decimal.NewFromFloat(cheapFraction))
			if !cheaper.IsPositive() {
				cheaper = decimal.NewFromFloat(0.01)
			}
			variants = append(variants, variant(&cheaper, nil, 1000, false))

			return EffectivePrice(product, variants).Equal(before)
		},
		gen.SliceOfN(4, gen.Float64Range(1, 500)),
		gen.SliceOfN(4, gen.IntRange(0, 100)),
		gen.Float64Range(0.1, 0.9),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property 4: nil-priced and zero-priced variants are never chosen as
// the minimum, even when they are the only variants.
func TestProperty_InvalidPriceExclusion(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("unpriced variants never become the effective price", prop.ForAll(
		func(validPrices []float64, unpricedCount int) bool {
			product := variableProduct()

			variants := make([]domain.Variant, 0, len(validPrices)+unpricedCount)
			for _, p := range validPrices {
				d := decimal.NewFromFloat(p)
				variants = append(variants, variant(&d, nil, 1, true))
			}
			zero := decimal.Zero
			for i := 0; i < unpricedCount; i++ {
				if i%2 == 0 {
					variants = append(variants, variant(nil, nil, 1, true))
				} else {
					variants = append(variants, variant(&zero, nil, 1, true))
				}
			}

			effective := EffectivePrice(product, variants)
			if len(validPrices) == 0 {
				// Degenerate default: no valid price point resolves to 0.
				return effective.Equal(decimal.Zero)
			}

			min := decimal.NewFromFloat(validPrices[0])
			for _, p := range validPrices[1:] {
				if d := decimal.NewFromFloat(p); d.LessThan(min) {
					min = d
				}
			}
			return effective.Equal(min) && effective.IsPositive()
		},
		gen.SliceOf(gen.Float64Range(0.01, 999)),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property 5: when every valid price point is identical the range
// collapses to nil rather than {x, x}.
func TestProperty_RangeCollapse(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("uniform prices produce no range", prop.ForAll(
		func(price float64, count int) bool {
			product := variableProduct()

			variants := make([]domain.Variant, 0, count)
			for i := 0; i < count; i++ {
				d := decimal.NewFromFloat(price)
				variants = append(variants, variant(&d, nil, 1, true))
			}

			return PriceRange(product, variants) == nil
		},
		gen.Float64Range(0.01, 999),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property 6: variable-product stock is exactly the sign of the summed
// active quantities.
func TestProperty_StockAggregation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("out of stock iff active quantities sum to <= 0", prop.ForAll(
		func(prices []float64, actives []bool, qtys []int) bool {
			product := variableProduct()
			variants := zipVariants(prices, actives, qtys)

			activeCount := 0
			total := 0
			for _, v := range variants {
				if v.IsActive {
					activeCount++
					total += v.InventoryQuantity
				}
			}

			expected := activeCount == 0 || total <= 0
			return OutOfStock(product, variants) == expected
		},
		gen.SliceOf(gen.Float64Range(0, 999)),
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.IntRange(-50, 50)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property 7: with inventory tracking off, a non-variable product is
// never out of stock, negative quantities included.
func TestProperty_TrackingBypass(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("untracked products are always in stock", prop.ForAll(
		func(qty int, digital bool) bool {
			productType := domain.ProductTypeSingle
			if digital {
				productType = domain.ProductTypeDigital
			}

			product := &domain.Product{
				ProductType:       productType,
				Price:             dec("10"),
				TrackInventory:    false,
				InventoryQuantity: qty,
			}

			return !OutOfStock(product, nil)
		},
		gen.IntRange(-1000, 1000),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
