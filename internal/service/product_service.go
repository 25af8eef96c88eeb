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
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProductType = errors.New("invalid product type")
	ErrInvalidSlug        = errors.New("slug may only contain lowercase letters, digits and hyphens")
	ErrNegativePrice      = errors.New("price must not be negative")
	ErrNegativeInventory  = errors.New("inventory quantity must not be negative")
	ErrVariantsNotAllowed = errors.New("only variable products may carry variants")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ProductInput carries the admin-editable fields of a product. The
// mutation path is where numeric validation lives: the pricing resolvers
// downstream accept whatever is stored without checking.
type ProductInput struct {
	Name              string
	Slug              string
	Description       string
	ProductType       domain.ProductType
	Price             decimal.Decimal
	ComparePrice      *decimal.Decimal
	TrackInventory    bool
	InventoryQuantity int
	ImageURL          string
	Variants          []VariantInput
}

// VariantInput carries the admin-editable fields of one variant.
type VariantInput struct {
	Name              string
	SKU               string
	Price             *decimal.Decimal
	ComparePrice      *decimal.Decimal
	InventoryQuantity int
	IsActive          bool
}

// ProductService defines the tenant admin mutations over the catalog.
// Variants are created, replaced and deleted only through their parent
// product here, never independently.
type ProductService interface {
	CreateProduct(ctx context.Context, tenantID uuid.UUID, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, tenantID, productID uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error
	GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*domain.Product, []domain.Variant, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// CreateProduct validates the input and persists the product with its
// variant collection.
func (s *productService) CreateProduct(ctx context.Context, tenantID uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:                uuid.New(),
		TenantID:          tenantID,
		Name:              input.Name,
		Slug:              input.Slug,
		Description:       input.Description,
		ProductType:       input.ProductType,
		Price:             input.Price,
		ComparePrice:      input.ComparePrice,
		TrackInventory:    input.TrackInventory,
		InventoryQuantity: input.InventoryQuantity,
		ImageURL:          input.ImageURL,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	if len(input.Variants) > 0 {
		if err := s.productRepo.ReplaceVariants(ctx, product.ID, buildVariants(product.ID, input.Variants, now)); err != nil {
			return nil, fmt.Errorf("failed to store variants: %w", err)
		}
	}

	return product, nil
}

// UpdateProduct validates the input and replaces both the product row
// and its variant collection.
func (s *productService) UpdateProduct(ctx context.Context, tenantID, productID uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:                existing.ID,
		TenantID:          tenantID,
		Name:              input.Name,
		Slug:              input.Slug,
		Description:       input.Description,
		ProductType:       input.ProductType,
		Price:             input.Price,
		ComparePrice:      input.ComparePrice,
		TrackInventory:    input.TrackInventory,
		InventoryQuantity: input.InventoryQuantity,
		ImageURL:          input.ImageURL,
		CreatedAt:         existing.CreatedAt,
		UpdatedAt:         now,
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	if err := s.productRepo.ReplaceVariants(ctx, product.ID, buildVariants(product.ID, input.Variants, now)); err != nil {
		return nil, fmt.Errorf("failed to store variants: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a product and, via the cascade FK, its variants
func (s *productService) DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	return s.productRepo.Delete(ctx, tenantID, productID)
}

// GetProduct retrieves a product with its variants for the admin editor
func (s *productService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*domain.Product, []domain.Variant, error) {
	product, err := s.productRepo.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, nil, err
	}

	variants, err := s.productRepo.ListVariants(ctx, productID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load variants: %w", err)
	}

	return product, variants, nil
}

func validateProductInput(input ProductInput) error {
	if !input.ProductType.Valid() {
		return ErrInvalidProductType
	}
	if !slugPattern.MatchString(input.Slug) {
		return ErrInvalidSlug
	}
	if input.Price.IsNegative() {
		return ErrNegativePrice
	}
	if input.ComparePrice != nil && input.ComparePrice.IsNegative() {
		return ErrNegativePrice
	}
	if input.InventoryQuantity < 0 {
		return ErrNegativeInventory
	}
	if len(input.Variants) > 0 && input.ProductType != domain.ProductTypeVariable {
		return ErrVariantsNotAllowed
	}

	for _, v := range input.Variants {
		if v.Price != nil && v.Price.IsNegative() {
			return ErrNegativePrice
		}
		if v.ComparePrice != nil && v.ComparePrice.IsNegative() {
			return ErrNegativePrice
		}
		if v.InventoryQuantity < 0 {
			return ErrNegativeInventory
		}
	}

	return nil
}

func buildVariants(productID uuid.UUID, inputs []VariantInput, now time.Time) []domain.Variant {
	variants := make([]domain.Variant, 0, len(inputs))
	for _, in := range inputs {
		variants = append(variants, domain.Variant{
			ID:                uuid.New(),
			ProductID:         productID,
			Name:              in.Name,
			SKU:               in.SKU,
			Price:             in.Price,
			ComparePrice:      in.ComparePrice,
			InventoryQuantity: in.InventoryQuantity,
			IsActive:          in.IsActive,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	return variants
}
