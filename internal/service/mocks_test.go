package service

import (
	"context"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Map-backed repository doubles shared by the service tests.

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
	variants map[uuid.UUID][]domain.Variant
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
		variants: make(map[uuid.UUID][]domain.Variant),
	}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	for _, p := range m.products {
		if p.TenantID == product.TenantID && p.Slug == product.Slug {
			return repository.ErrSlugTaken
		}
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	existing, exists := m.products[product.ID]
	if !exists || existing.TenantID != product.TenantID {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, exists := m.products[id]
	if !exists || existing.TenantID != tenantID {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	delete(m.variants, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists || product.TenantID != tenantID {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.TenantID == tenantID && p.Slug == slug {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context, tenantID uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		if p.TenantID == tenantID {
			products = append(products, p)
		}
	}
	return products, len(products), nil
}

func (m *mockProductRepository) Search(ctx context.Context, tenantID uuid.UUID, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return m.List(ctx, tenantID, page, pageSize, "created_at", repository.SortOrderDesc)
}

func (m *mockProductRepository) ListVariants(ctx context.Context, productID uuid.UUID) ([]domain.Variant, error) {
	return m.variants[productID], nil
}

func (m *mockProductRepository) ListVariantsForProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]domain.Variant, error) {
	grouped := make(map[uuid.UUID][]domain.Variant)
	for _, id := range productIDs {
		if vs, ok := m.variants[id]; ok {
			grouped[id] = vs
		}
	}
	return grouped, nil
}

func (m *mockProductRepository) ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []domain.Variant) error {
	m.variants[productID] = variants
	return nil
}

type mockCartRepository struct {
	carts map[string]*domain.Cart
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: make(map[string]*domain.Cart)}
}

func cartKey(tenantID uuid.UUID, customerID string) string {
	return tenantID.String() + ":" + customerID
}

func (m *mockCartRepository) Get(ctx context.Context, tenantID uuid.UUID, customerID string) (*domain.Cart, error) {
	cart, exists := m.carts[cartKey(tenantID, customerID)]
	if !exists {
		return nil, nil
	}
	return cart, nil
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	m.carts[cartKey(cart.TenantID, cart.CustomerID)] = cart
	return nil
}

func (m *mockCartRepository) Delete(ctx context.Context, tenantID uuid.UUID, customerID string) error {
	delete(m.carts, cartKey(tenantID, customerID))
	return nil
}

type mockTenantRepository struct {
	tenants map[uuid.UUID]*domain.Tenant
}

func newMockTenantRepository() *mockTenantRepository {
	return &mockTenantRepository{tenants: make(map[uuid.UUID]*domain.Tenant)}
}

func (m *mockTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	for _, t := range m.tenants {
		if t.Subdomain == tenant.Subdomain {
			return repository.ErrSubdomainTaken
		}
	}
	m.tenants[tenant.ID] = tenant
	return nil
}

func (m *mockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	tenant, exists := m.tenants[id]
	if !exists {
		return nil, repository.ErrTenantNotFound
	}
	return tenant, nil
}

func (m *mockTenantRepository) FindBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	for _, t := range m.tenants {
		if t.Subdomain == subdomain {
			return t, nil
		}
	}
	return nil, repository.ErrTenantNotFound
}

func (m *mockTenantRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Tenant, int, error) {
	tenants := []*domain.Tenant{}
	for _, t := range m.tenants {
		tenants = append(tenants, t)
	}
	return tenants, len(tenants), nil
}

func (m *mockTenantRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TenantStatus) error {
	tenant, exists := m.tenants[id]
	if !exists {
		return repository.ErrTenantNotFound
	}
	tenant.Status = status
	tenant.UpdatedAt = time.Now()
	return nil
}

type mockFeatureFlagRepository struct {
	flags map[string]*domain.FeatureFlag
}

func newMockFeatureFlagRepository() *mockFeatureFlagRepository {
	return &mockFeatureFlagRepository{flags: make(map[string]*domain.FeatureFlag)}
}

func flagKey(tenantID uuid.UUID, key string) string {
	return tenantID.String() + ":" + key
}

func (m *mockFeatureFlagRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.FeatureFlag, error) {
	flags := []domain.FeatureFlag{}
	for _, f := range m.flags {
		if f.TenantID == tenantID {
			flags = append(flags, *f)
		}
	}
	return flags, nil
}

func (m *mockFeatureFlagRepository) Get(ctx context.Context, tenantID uuid.UUID, key string) (*domain.FeatureFlag, error) {
	flag, exists := m.flags[flagKey(tenantID, key)]
	if !exists {
		return nil, repository.ErrFeatureFlagNotFound
	}
	return flag, nil
}

func (m *mockFeatureFlagRepository) Set(ctx context.Context, flag *domain.FeatureFlag) error {
	m.flags[flagKey(flag.TenantID, flag.Key)] = flag
	return nil
}

type mockUserRepository struct {
	users map[uuid.UUID]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func sameScope(a, b *uuid.UUID) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	for _, u := range m.users {
		if u.Email == user.Email && sameScope(u.TenantID, user.TenantID) {
			return repository.ErrUserAlreadyExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, tenantID *uuid.UUID, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email && sameScope(u.TenantID, tenantID) {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, exists := m.users[id]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var deleted int64
	for key, token := range m.tokens {
		if token.ExpiresAt.Before(before) {
			delete(m.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
