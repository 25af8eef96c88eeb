package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductUnavailable = errors.New("product is out of stock")
	ErrVariantNotFound    = errors.New("variant not found or inactive")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrItemNotInCart      = errors.New("item not in cart")
)

// CartLine is one cart item priced at read time. Unit prices are never
// stored with the cart, so a merchant repricing a product reprices every
// open cart on the next read.
type CartLine struct {
	ProductID   uuid.UUID       `json:"product_id"`
	VariantID   *uuid.UUID      `json:"variant_id,omitempty"`
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// CartView is the fully priced cart returned to the storefront.
type CartView struct {
	Lines    []CartLine      `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartService defines the storefront cart operations.
type CartService interface {
	GetCart(ctx context.Context, tenantID uuid.UUID, customerID string) (*CartView, error)
	AddItem(ctx context.Context, tenantID uuid.UUID, customerID string, productID uuid.UUID, variantID *uuid.UUID, quantity int) (*CartView, error)
	UpdateQuantity(ctx context.Context, tenantID uuid.UUID, customerID string, productID uuid.UUID, variantID *uuid.UUID, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, tenantID uuid.UUID, customerID string, productID uuid.UUID, variantID *uuid.UUID) (*CartView, error)
	ClearCart(ctx context.Context, tenantID uuid.UUID, customerID string) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart loads the cart and prices every line through the resolvers
func (s *cartService) GetCart(ctx context.Context, tenantID uuid.UUID, customerID string) (*CartView, error) {
	cart, err := s.cartRepo.Get(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &CartView{Lines: []CartLine{}, Subtotal: decimal.Zero}, nil
	}

	return s.priceCart(ctx, cart)
}

// AddItem adds a product (or a specific variant) to the cart. Out of
// stock products are rejected outright; quantities for tracked items are
// clamped to what is actually available.
func (s *cartService) AddItem(ctx context.Context, tenantID uuid.UUID, customerID string, productID uuid.UUID, variantID *uuid.UUID, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, variants, err := s.loadProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if pricing.OutOfStock(product, variants) {
		return nil, ErrProductUnavailable
	}

	limit, err := stockLimit(product, variants, variantID)
	if err != nil {
		return nil, err
	}
	// A depleted variant can hide behind a sibling that keeps the product
	// in stock; a zero limit must reject, never clamp a line to zero.
	if limit == 0 {
		return nil, ErrProductUnavailable
	}

	cart, err := s.cartRepo.Get(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &domain.Cart{TenantID: tenantID, CustomerID: customerID}
	}

	found := false
	for i := range cart.Items {
		if sameLine(cart.Items[i], productID, variantID) {
			cart.Items[i].Quantity = clampQuantity(cart.Items[i].Quantity+quantity, limit)
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: productID,
			VariantID: variantID,
			Quantity:  clampQuantity(quantity, limit),
		})
	}

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}

	return s.priceCart(ctx, cart)
}

// UpdateQuantity sets an existing line's quantity; zero or less removes
// the line.
func (s *cartService) UpdateQuantity(ctx context.Context, tenantID uuid.UUID, customerID string, productID uuid.UUID, variantID *uuid.UUID, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, tenantID, customerID, productID, variantID)
	}

	product, variants, err := s.loadProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	limit, err := stockLimit(product, variants, variantID)
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		return nil, ErrProductUnavailable
	}

	cart, err := s.cartRepo.Get(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrItemNotInCart
	}

	found := false
	for i := range cart.Items {
		if sameLine(cart.Items[i], productID, variantID) {
			cart.Items[i].Quantity = clampQuantity(quantity, limit)
			found = true
			break
		}
	}
	if !found {
		return nil, ErrItemNotInCart
	}

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}

	return s.priceCart(ctx, cart)
}

// RemoveItem drops a line from the cart
func (s *cartService) RemoveItem(ctx context.Context, tenantID uuid.UUID, customerID string, productID uuid.UUID, variantID *uuid.UUID) (*CartView, error) {
	cart, err := s.cartRepo.Get(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrItemNotInCart
	}

	kept := cart.Items[:0]
	removed := false
	for _, item := range cart.Items {
		if sameLine(item, productID, variantID) {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return nil, ErrItemNotInCart
	}
	cart.Items = kept

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}

	return s.priceCart(ctx, cart)
}

// ClearCart deletes the whole cart
func (s *cartService) ClearCart(ctx context.Context, tenantID uuid.UUID, customerID string) error {
	return s.cartRepo.Delete(ctx, tenantID, customerID)
}

func (s *cartService) loadProduct(ctx context.Context, tenantID, productID uuid.UUID) (*domain.Product, []domain.Variant, error) {
	product, err := s.productRepo.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, nil, err
	}

	var variants []domain.Variant
	if product.ProductType == domain.ProductTypeVariable {
		variants, err = s.productRepo.ListVariants(ctx, productID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load variants: %w", err)
		}
	}

	return product, variants, nil
}

// priceCart resolves every line against the current catalog. Lines whose
// product has since been deleted are silently dropped from the view.
func (s *cartService) priceCart(ctx context.Context, cart *domain.Cart) (*CartView, error) {
	view := &CartView{Lines: []CartLine{}, Subtotal: decimal.Zero}

	for _, item := range cart.Items {
		product, variants, err := s.loadProduct(ctx, cart.TenantID, item.ProductID)
		if err != nil {
			if err == repository.ErrProductNotFound {
				continue
			}
			return nil, err
		}

		unit := pricing.EffectivePrice(product, variants)
		variantName := ""
		if item.VariantID != nil {
			v := findVariant(variants, *item.VariantID)
			if v == nil {
				continue
			}
			variantName = v.Name
			if v.Price != nil && v.Price.IsPositive() {
				unit = *v.Price
			}
		}

		lineTotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Lines = append(view.Lines, CartLine{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: product.Name,
			VariantName: variantName,
			Quantity:    item.Quantity,
			UnitPrice:   unit,
			LineTotal:   lineTotal,
		})
		view.Subtotal = view.Subtotal.Add(lineTotal)
	}

	return view, nil
}

// stockLimit returns the maximum quantity a line may hold, or -1 when
// unlimited (untracked non-variable products).
func stockLimit(product *domain.Product, variants []domain.Variant, variantID *uuid.UUID) (int, error) {
	if product.ProductType == domain.ProductTypeVariable {
		if variantID == nil {
			// Whole-product add on a variable product caps at the total
			// active stock.
			total := 0
			for _, v := range pricing.ActiveVariants(variants) {
				total += v.InventoryQuantity
			}
			return total, nil
		}

		v := findVariant(variants, *variantID)
		if v == nil || !v.IsActive {
			return 0, ErrVariantNotFound
		}
		return v.InventoryQuantity, nil
	}

	if variantID != nil {
		return 0, ErrVariantNotFound
	}
	if !product.TrackInventory {
		return -1, nil
	}
	return product.InventoryQuantity, nil
}

func clampQuantity(quantity, limit int) int {
	if limit < 0 || quantity <= limit {
		return quantity
	}
	return limit
}

func sameLine(item domain.CartItem, productID uuid.UUID, variantID *uuid.UUID) bool {
	if item.ProductID != productID {
		return false
	}
	if (item.VariantID == nil) != (variantID == nil) {
		return false
	}
	return item.VariantID == nil || *item.VariantID == *variantID
}

func findVariant(variants []domain.Variant, id uuid.UUID) *domain.Variant {
	for i := range variants {
		if variants[i].ID == id {
			return &variants[i]
		}
	}
	return nil
}
