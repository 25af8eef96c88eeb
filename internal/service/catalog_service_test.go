package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(repo *mockProductRepository, tenantID uuid.UUID, slug string, productType domain.ProductType, price string) *domain.Product {
	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        slug,
		Slug:        slug,
		ProductType: productType,
		Price:       dec(price),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	repo.products[product.ID] = product
	return product
}

func seedVariant(repo *mockProductRepository, productID uuid.UUID, price *string, qty int, active bool) domain.Variant {
	v := domain.Variant{
		ID:                uuid.New(),
		ProductID:         productID,
		Name:              "variant",
		SKU:               uuid.New().String()[:8],
		InventoryQuantity: qty,
		IsActive:          active,
	}
	if price != nil {
		v.Price = decPtr(*price)
	}
	repo.variants[productID] = append(repo.variants[productID], v)
	return v
}

func strPtr(s string) *string { return &s }

func TestCatalogService_GetProductBySlug_SingleProduct(t *testing.T) {
	repo := newMockProductRepository()
	tenantID := uuid.New()
	seedProduct(repo, tenantID, "ceramic-mug", domain.ProductTypeSingle, "14.50")

	svc := NewCatalogService(repo)

	view, err := svc.GetProductBySlug(context.Background(), tenantID, "ceramic-mug")
	require.NoError(t, err)

	assert.True(t, view.Quote.EffectivePrice.Equal(dec("14.50")))
	assert.Nil(t, view.Quote.PriceRange)
	assert.Empty(t, view.Variants)
}

func TestCatalogService_GetProductBySlug_VariableDerivesFromVariants(t *testing.T) {
	repo := newMockProductRepository()
	tenantID := uuid.New()
	// The stored product price is deliberately misleading; variable
	// products derive pricing from variants alone.
	product := seedProduct(repo, tenantID, "tee-shirt", domain.ProductTypeVariable, "999.99")
	seedVariant(repo, product.ID, strPtr("25.00"), 5, true)
	seedVariant(repo, product.ID, strPtr("19.00"), 3, true)
	seedVariant(repo, product.ID, strPtr("9.00"), 8, false)

	svc := NewCatalogService(repo)

	view, err := svc.GetProductBySlug(context.Background(), tenantID, "tee-shirt")
	require.NoError(t, err)

	assert.True(t, view.Quote.EffectivePrice.Equal(dec("19.00")))
	require.NotNil(t, view.Quote.PriceRange)
	assert.True(t, view.Quote.PriceRange.Min.Equal(dec("19.00")))
	assert.True(t, view.Quote.PriceRange.Max.Equal(dec("25.00")))
	assert.False(t, view.Quote.OutOfStock)
	assert.Len(t, view.Variants, 3)
}

func TestCatalogService_GetProductBySlug_NotFound(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewCatalogService(repo)

	_, err := svc.GetProductBySlug(context.Background(), uuid.New(), "missing")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestCatalogService_GetProductBySlug_TenantIsolation(t *testing.T) {
	repo := newMockProductRepository()
	ownerID := uuid.New()
	otherID := uuid.New()
	seedProduct(repo, ownerID, "ceramic-mug", domain.ProductTypeSingle, "14.50")

	svc := NewCatalogService(repo)

	_, err := svc.GetProductBySlug(context.Background(), otherID, "ceramic-mug")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestCatalogService_ListProducts_QuotesEveryProduct(t *testing.T) {
	repo := newMockProductRepository()
	tenantID := uuid.New()
	seedProduct(repo, tenantID, "mug", domain.ProductTypeSingle, "14.50")
	variable := seedProduct(repo, tenantID, "tee", domain.ProductTypeVariable, "0")
	seedVariant(repo, variable.ID, strPtr("19.00"), 3, true)

	svc := NewCatalogService(repo)

	views, total, err := svc.ListProducts(context.Background(), tenantID, 1, 20, "created_at", repository.SortOrderDesc)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, views, 2)

	bydSlug := map[string]ProductView{}
	for _, v := range views {
		bydSlug[v.Product.Slug] = v
	}
	assert.True(t, bydSlug["mug"].Quote.EffectivePrice.Equal(dec("14.50")))
	assert.True(t, bydSlug["tee"].Quote.EffectivePrice.Equal(dec("19.00")))
}

func TestCatalogService_ListProducts_UnpricedVariableQuotesZero(t *testing.T) {
	repo := newMockProductRepository()
	tenantID := uuid.New()
	product := seedProduct(repo, tenantID, "configurable", domain.ProductTypeVariable, "50.00")
	seedVariant(repo, product.ID, nil, 4, true)

	svc := NewCatalogService(repo)

	views, _, err := svc.ListProducts(context.Background(), tenantID, 1, 20, "created_at", repository.SortOrderDesc)
	require.NoError(t, err)
	require.Len(t, views, 1)

	assert.True(t, views[0].Quote.EffectivePrice.IsZero())
	assert.False(t, views[0].Quote.OutOfStock)
}
