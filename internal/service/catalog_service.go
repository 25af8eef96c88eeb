package service

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// ProductView is a product together with its variants and the pricing
// quote derived from them. It is the single shape the storefront read
// path produces, so listings, detail pages and any server-side renderer
// all see identical derived pricing.
type ProductView struct {
	Product  domain.Product   `json:"product"`
	Variants []domain.Variant `json:"variants"`
	Quote    pricing.Quote    `json:"quote"`
}

// CatalogService is the storefront-facing read path over the catalog.
// It never mutates products or variants.
type CatalogService interface {
	ListProducts(ctx context.Context, tenantID uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]ProductView, int, error)
	SearchProducts(ctx context.Context, tenantID uuid.UUID, query string, page, pageSize int) ([]ProductView, int, error)
	GetProductBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*ProductView, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

// ListProducts returns one page of a tenant's catalog with resolved pricing
func (s *catalogService) ListProducts(ctx context.Context, tenantID uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]ProductView, int, error) {
	products, total, err := s.productRepo.List(ctx, tenantID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	views, err := s.buildViews(ctx, products)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// SearchProducts returns catalog matches with resolved pricing
func (s *catalogService) SearchProducts(ctx context.Context, tenantID uuid.UUID, query string, page, pageSize int) ([]ProductView, int, error) {
	products, total, err := s.productRepo.Search(ctx, tenantID, query, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}

	views, err := s.buildViews(ctx, products)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// GetProductBySlug returns one product detail view with resolved pricing
func (s *catalogService) GetProductBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*ProductView, error) {
	product, err := s.productRepo.FindBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}

	variants, err := s.variantsFor(ctx, product)
	if err != nil {
		return nil, err
	}

	view := &ProductView{
		Product:  *product,
		Variants: variants,
		Quote:    pricing.Resolve(product, variants),
	}
	return view, nil
}

// buildViews loads variants for a page of products in one round trip and
// attaches a quote to each product.
func (s *catalogService) buildViews(ctx context.Context, products []*domain.Product) ([]ProductView, error) {
	variableIDs := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		if p.ProductType == domain.ProductTypeVariable {
			variableIDs = append(variableIDs, p.ID)
		}
	}

	grouped, err := s.productRepo.ListVariantsForProducts(ctx, variableIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		variants := grouped[p.ID]
		views = append(views, ProductView{
			Product:  *p,
			Variants: variants,
			Quote:    pricing.Resolve(p, variants),
		})
	}
	return views, nil
}

// variantsFor loads variants only when the product type delegates
// authority to them; single and digital products ignore variants anyway.
func (s *catalogService) variantsFor(ctx context.Context, product *domain.Product) ([]domain.Variant, error) {
	if product.ProductType != domain.ProductTypeVariable {
		return nil, nil
	}

	variants, err := s.productRepo.ListVariants(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	return variants, nil
}
