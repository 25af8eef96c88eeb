package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const TenantKey contextKey = "storefront_tenant"

// tenantCacheTTL bounds how long a renamed or suspended tenant can keep
// resolving from cache.
const tenantCacheTTL = 5 * time.Minute

// TenantLookup is the slice of the tenant repository the resolver needs.
type TenantLookup interface {
	FindBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error)
}

// TenantResolver resolves the storefront tenant from the request host's
// left-most label and injects it into the request context. Lookups go
// through a Redis read-through cache; on any cache error the database is
// consulted directly so Redis outages degrade to slower requests, not
// dead storefronts.
func TenantResolver(lookup TenantLookup, cache *redis.Client, baseDomain string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subdomain := SubdomainFromHost(r.Host, baseDomain)
			if subdomain == "" {
				RespondWithError(w, http.StatusNotFound, "storefront not found")
				return
			}

			ctx := r.Context()
			tenant := tenantFromCache(ctx, cache, subdomain, logger)
			if tenant == nil {
				var err error
				tenant, err = lookup.FindBySubdomain(ctx, subdomain)
				if err != nil {
					logger.Debug("Tenant resolution failed",
						zap.String("subdomain", subdomain),
						zap.Error(err),
					)
					RespondWithError(w, http.StatusNotFound, "storefront not found")
					return
				}
				storeTenantInCache(ctx, cache, tenant, logger)
			}

			if tenant.Status != domain.TenantStatusActive {
				RespondWithError(w, http.StatusForbidden, "storefront is suspended")
				return
			}

			ctx = context.WithValue(ctx, TenantKey, tenant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTenant extracts the resolved storefront tenant from request context
func GetTenant(ctx context.Context) (*domain.Tenant, bool) {
	tenant, ok := ctx.Value(TenantKey).(*domain.Tenant)
	return tenant, ok
}

// SubdomainFromHost extracts the single tenant label to the left of the
// base domain. The bare base domain, nested labels and foreign hosts all
// yield "".
func SubdomainFromHost(host, baseDomain string) string {
	// Strip the port if present
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	host = strings.ToLower(host)

	if host == baseDomain {
		return ""
	}

	label, found := strings.CutSuffix(host, "."+baseDomain)
	if !found || label == "" || strings.Contains(label, ".") {
		return ""
	}

	return label
}

func tenantCacheKey(subdomain string) string {
	return "tenant:subdomain:" + subdomain
}

func tenantFromCache(ctx context.Context, cache *redis.Client, subdomain string, logger *zap.Logger) *domain.Tenant {
	if cache == nil {
		return nil
	}

	data, err := cache.Get(ctx, tenantCacheKey(subdomain)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Tenant cache read failed", zap.Error(err))
		}
		return nil
	}

	var tenant domain.Tenant
	if err := json.Unmarshal([]byte(data), &tenant); err != nil {
		logger.Warn("Tenant cache entry corrupt", zap.Error(err))
		return nil
	}
	return &tenant
}

func storeTenantInCache(ctx context.Context, cache *redis.Client, tenant *domain.Tenant, logger *zap.Logger) {
	if cache == nil {
		return
	}

	data, err := json.Marshal(tenant)
	if err != nil {
		return
	}
	if err := cache.Set(ctx, tenantCacheKey(tenant.Subdomain), data, tenantCacheTTL).Err(); err != nil {
		logger.Warn("Tenant cache write failed", zap.Error(err))
	}
}
