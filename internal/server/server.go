package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

// NewServer wires repositories, services and handlers into the three
// route surfaces: the tenant storefront, the merchant admin API and
// the platform console.
func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(
		[]string{"https://*." + cfg.Server.BaseDomain},
		cfg.Server.Env == "development",
	))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository(db)
	flagRepo := repository.NewFeatureFlagRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	cartRepo := repository.NewCartRepository(redisClient, time.Duration(cfg.Cart.TTLHours)*time.Hour)

	// Initialize services
	tenantService := service.NewTenantService(tenantRepo, flagRepo)
	catalogService := service.NewCatalogService(productRepo)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret)

	// Initialize handlers
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	cartHandler := transport.NewCartHandler(cartService, logger)
	productHandler := transport.NewProductHandler(productService, logger)
	tenantHandler := transport.NewTenantHandler(tenantService, logger)
	userHandler := transport.NewUserHandler(userService, logger)

	// Shared middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	tenantResolver := custommiddleware.TenantResolver(tenantRepo, redisClient, cfg.Server.BaseDomain, logger)
	storefrontRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 300,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:storefront",
	}, logger)

	// Health check endpoint, outside every tenant and auth scope
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Storefront surface: tenant resolved from the request host. Cart
	// routes work for guests, so auth stays optional here and the cart
	// handler falls back to the session header.
	router.Group(func(r chi.Router) {
		r.Use(tenantResolver)
		r.Use(custommiddleware.LoggingMiddleware(logger))
		r.Use(storefrontRateLimit)

		catalogHandler.RegisterRoutes(r)
		cartHandler.RegisterRoutes(r)
		userHandler.RegisterStorefrontRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			userHandler.RegisterProfileRoutes(r)
		})
	})

	// Merchant admin surface: tenant scope comes from the token claim
	router.Route("/api/admin", func(r chi.Router) {
		r.Use(custommiddleware.LoggingMiddleware(logger))
		r.Use(authMiddleware)
		r.Use(custommiddleware.RequireRole([]string{domain.RoleMerchant, domain.RolePlatformAdmin}, logger))

		productHandler.RegisterRoutes(r)
	})

	// Platform console surface
	router.Route("/api/platform", func(r chi.Router) {
		r.Use(custommiddleware.LoggingMiddleware(logger))

		r.Route("/auth", func(r chi.Router) {
			userHandler.RegisterPlatformAuthRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(custommiddleware.RequirePlatformAdmin(logger))

			tenantHandler.RegisterRoutes(r)
			userHandler.RegisterProfileRoutes(r)
		})
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
