package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSlugTaken       = errors.New("product with this slug already exists for this tenant")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductRepository defines the interface for tenant-scoped product data
// access. Every query is keyed by tenant ID; a product belonging to
// another tenant behaves exactly like a missing product.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Product, error)
	FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*domain.Product, error)
	List(ctx context.Context, tenantID uuid.UUID, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error)
	Search(ctx context.Context, tenantID uuid.UUID, query string, page, pageSize int) ([]*domain.Product, int, error)
	ListVariants(ctx context.Context, productID uuid.UUID) ([]domain.Variant, error)
	ListVariantsForProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]domain.Variant, error)
	ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []domain.Variant) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, tenant_id, name, slug, description, product_type, price, compare_price,
	track_inventory, inventory_quantity, image_url, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.TenantID,
		&product.Name,
		&product.Slug,
		&product.Description,
		&product.ProductType,
		&product.Price,
		&product.ComparePrice,
		&product.TrackInventory,
		&product.InventoryQuantity,
		&product.ImageURL,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, tenant_id, name, slug, description, product_type, price,
			compare_price, track_inventory, inventory_quantity, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.TenantID,
		product.Name,
		product.Slug,
		product.Description,
		product.ProductType,
		product.Price,
		product.ComparePrice,
		product.TrackInventory,
		product.InventoryQuantity,
		product.ImageURL,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "SQLSTATE 23505") {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $3, slug = $4, description = $5, product_type = $6, price = $7,
		    compare_price = $8, track_inventory = $9, inventory_quantity = $10,
		    image_url = $11, updated_at = $12
		WHERE tenant_id = $1 AND id = $2
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.TenantID,
		product.ID,
		product.Name,
		product.Slug,
		product.Description,
		product.ProductType,
		product.Price,
		product.ComparePrice,
		product.TrackInventory,
		product.InventoryQuantity,
		product.ImageURL,
		product.UpdatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "SQLSTATE 23505") {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product; its variants go with it via the cascade FK.
func (r *productRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM products WHERE tenant_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID within a tenant
func (r *productRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE tenant_id = $1 AND id = $2`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindBySlug retrieves a product by its tenant-scoped slug
func (r *productRepository) FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE tenant_id = $1 AND slug = $2`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, tenantID, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by slug: %w", err)
	}

	return product, nil
}

// List retrieves a tenant's products with pagination and sorting
func (r *productRepository) List(ctx context.Context, tenantID uuid.UUID, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]bool{
		"name":       true,
		"price":      true,
		"created_at": true,
		"slug":       true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at" // Default sort field
	}

	// Validate sort order
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc // Default sort order
	}

	countQuery := `SELECT COUNT(*) FROM products WHERE tenant_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, tenantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE tenant_id = $1
		ORDER BY %s %s
		LIMIT $2 OFFSET $3
	`, productColumns, sortBy, sortOrder)

	rows, err := r.db.QueryContext(ctx, query, tenantID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

// Search searches a tenant's products by name or description with pagination
func (r *productRepository) Search(ctx context.Context, tenantID uuid.UUID, query string, page, pageSize int) ([]*domain.Product, int, error) {
	// If query is empty, return all products
	if strings.TrimSpace(query) == "" {
		return r.List(ctx, tenantID, page, pageSize, "created_at", SortOrderDesc)
	}

	// Use ILIKE for case-insensitive search
	searchPattern := "%" + query + "%"

	countQuery := `
		SELECT COUNT(*)
		FROM products
		WHERE tenant_id = $1 AND (name ILIKE $2 OR description ILIKE $2)
	`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, tenantID, searchPattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	offset := (page - 1) * pageSize

	searchQuery := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE tenant_id = $1 AND (name ILIKE $2 OR description ILIKE $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, searchQuery, tenantID, searchPattern, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating search results: %w", err)
	}

	return products, total, nil
}

const variantColumns = `id, product_id, name, sku, price, compare_price, inventory_quantity,
	is_active, created_at, updated_at`

func scanVariant(row interface{ Scan(...any) error }) (domain.Variant, error) {
	var v domain.Variant
	err := row.Scan(
		&v.ID,
		&v.ProductID,
		&v.Name,
		&v.SKU,
		&v.Price,
		&v.ComparePrice,
		&v.InventoryQuantity,
		&v.IsActive,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	return v, err
}

// ListVariants retrieves all variants for one product, stable-ordered by
// creation time.
func (r *productRepository) ListVariants(ctx context.Context, productID uuid.UUID) ([]domain.Variant, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM variants
		WHERE product_id = $1
		ORDER BY created_at ASC
	`, variantColumns)

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	defer rows.Close()

	variants := []domain.Variant{}
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return variants, nil
}

// ListVariantsForProducts loads variants for a page of products in one
// round trip, grouped by product ID.
func (r *productRepository) ListVariantsForProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]domain.Variant, error) {
	grouped := make(map[uuid.UUID][]domain.Variant, len(productIDs))
	if len(productIDs) == 0 {
		return grouped, nil
	}

	placeholders := make([]string, len(productIDs))
	args := make([]any, len(productIDs))
	for i, id := range productIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM variants
		WHERE product_id IN (%s)
		ORDER BY created_at ASC
	`, variantColumns, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants for products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		grouped[v.ProductID] = append(grouped[v.ProductID], v)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return grouped, nil
}

// ReplaceVariants swaps a product's variant set atomically. Variants are
// only ever edited through the parent product's edit flow, so a full
// replace inside one transaction keeps the collection consistent.
func (r *productRepository) ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []domain.Variant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM variants WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("failed to clear variants: %w", err)
	}

	insertQuery := `
		INSERT INTO variants (id, product_id, name, sku, price, compare_price,
			inventory_quantity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, v := range variants {
		_, err := tx.ExecContext(
			ctx,
			insertQuery,
			v.ID,
			productID,
			v.Name,
			v.SKU,
			v.Price,
			v.ComparePrice,
			v.InventoryQuantity,
			v.IsActive,
			v.CreatedAt,
			v.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert variant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit variant replacement: %w", err)
	}

	return nil
}
