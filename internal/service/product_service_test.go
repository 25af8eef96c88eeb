package service

import (
	"context"
	"testing"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProductInput() ProductInput {
	return ProductInput{
		Name:        "Ceramic Mug",
		Slug:        "ceramic-mug",
		ProductType: domain.ProductTypeSingle,
		Price:       dec("14.50"),
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo)
	tenantID := uuid.New()

	product, err := svc.CreateProduct(context.Background(), tenantID, validProductInput())
	require.NoError(t, err)

	assert.Equal(t, tenantID, product.TenantID)
	assert.Equal(t, "ceramic-mug", product.Slug)
	assert.True(t, product.Price.Equal(dec("14.50")))
}

func TestProductService_CreateProduct_WithVariants(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo)
	tenantID := uuid.New()

	input := ProductInput{
		Name:        "Tee Shirt",
		Slug:        "tee-shirt",
		ProductType: domain.ProductTypeVariable,
		Variants: []VariantInput{
			{Name: "Small", SKU: "TEE-S", Price: decPtr("19.00"), InventoryQuantity: 5, IsActive: true},
			{Name: "Large", SKU: "TEE-L", Price: decPtr("25.00"), InventoryQuantity: 3, IsActive: true},
		},
	}

	product, err := svc.CreateProduct(context.Background(), tenantID, input)
	require.NoError(t, err)

	variants, err := repo.ListVariants(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Len(t, variants, 2)
}

func TestProductService_CreateProduct_ValidationErrors(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo)
	tenantID := uuid.New()

	tests := []struct {
		name    string
		mutate  func(*ProductInput)
		wantErr error
	}{
		{
			name:    "unknown product type",
			mutate:  func(in *ProductInput) { in.ProductType = "bundle" },
			wantErr: ErrInvalidProductType,
		},
		{
			name:    "uppercase slug",
			mutate:  func(in *ProductInput) { in.Slug = "Ceramic-Mug" },
			wantErr: ErrInvalidSlug,
		},
		{
			name:    "slug with spaces",
			mutate:  func(in *ProductInput) { in.Slug = "ceramic mug" },
			wantErr: ErrInvalidSlug,
		},
		{
			name:    "negative price",
			mutate:  func(in *ProductInput) { in.Price = dec("-1") },
			wantErr: ErrNegativePrice,
		},
		{
			name:    "negative compare price",
			mutate:  func(in *ProductInput) { in.ComparePrice = decPtr("-5") },
			wantErr: ErrNegativePrice,
		},
		{
			name:    "negative inventory",
			mutate:  func(in *ProductInput) { in.InventoryQuantity = -1 },
			wantErr: ErrNegativeInventory,
		},
		{
			name: "variants on a single product",
			mutate: func(in *ProductInput) {
				in.Variants = []VariantInput{{Name: "Small", SKU: "S"}}
			},
			wantErr: ErrVariantsNotAllowed,
		},
		{
			name: "negative variant price",
			mutate: func(in *ProductInput) {
				in.ProductType = domain.ProductTypeVariable
				in.Variants = []VariantInput{{Name: "Small", SKU: "S", Price: decPtr("-2")}}
			},
			wantErr: ErrNegativePrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validProductInput()
			tt.mutate(&input)

			_, err := svc.CreateProduct(context.Background(), tenantID, input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProductService_UpdateProduct_ReplacesVariants(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo)
	tenantID := uuid.New()

	created, err := svc.CreateProduct(context.Background(), tenantID, ProductInput{
		Name:        "Tee Shirt",
		Slug:        "tee-shirt",
		ProductType: domain.ProductTypeVariable,
		Variants: []VariantInput{
			{Name: "Small", SKU: "TEE-S", Price: decPtr("19.00"), IsActive: true},
			{Name: "Large", SKU: "TEE-L", Price: decPtr("25.00"), IsActive: true},
		},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(context.Background(), tenantID, created.ID, ProductInput{
		Name:        "Tee Shirt",
		Slug:        "tee-shirt",
		ProductType: domain.ProductTypeVariable,
		Variants: []VariantInput{
			{Name: "Medium", SKU: "TEE-M", Price: decPtr("21.00"), IsActive: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	variants, err := repo.ListVariants(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "TEE-M", variants[0].SKU)
}

func TestProductService_DeleteProduct(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo)
	tenantID := uuid.New()

	product, err := svc.CreateProduct(context.Background(), tenantID, validProductInput())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), tenantID, product.ID))

	_, _, err = svc.GetProduct(context.Background(), tenantID, product.ID)
	assert.Error(t, err)
}
