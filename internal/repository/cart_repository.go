package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CartRepository stores carts as JSON blobs in Redis, one per
// (tenant, customer) pair, with a sliding TTL. Carts are volatile by
// design; nothing in the resolved pricing is ever persisted here.
type CartRepository interface {
	Get(ctx context.Context, tenantID uuid.UUID, customerID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, tenantID uuid.UUID, customerID string) error
}

type cartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed CartRepository
func NewCartRepository(client *redis.Client, ttl time.Duration) CartRepository {
	return &cartRepository{
		client: client,
		ttl:    ttl,
	}
}

func cartKey(tenantID uuid.UUID, customerID string) string {
	return fmt.Sprintf("cart:%s:%s", tenantID, customerID)
}

// Get retrieves a cart; a missing key returns (nil, nil).
func (r *cartRepository) Get(ctx context.Context, tenantID uuid.UUID, customerID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(tenantID, customerID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &cart, nil
}

// Save writes the cart back and refreshes its TTL.
func (r *cartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now()

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(cart.TenantID, cart.CustomerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the cart entirely.
func (r *cartRepository) Delete(ctx context.Context, tenantID uuid.UUID, customerID string) error {
	if err := r.client.Del(ctx, cartKey(tenantID, customerID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
