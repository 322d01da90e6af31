package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"retail-pos/internal/config"
	"retail-pos/internal/domain"
	custommiddleware "retail-pos/internal/middleware"
	"retail-pos/internal/pricing"
	"retail-pos/internal/repository"
	"retail-pos/internal/service"
	"retail-pos/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))

	// Rate limiting is optional; a single-terminal deployment runs without it
	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerMinute,
			Window:            time.Minute,
			KeyPrefix:         "ratelimit",
		}, logger))
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	// Initialize the pricing engine from the configured rate table
	engine := pricing.NewEngine(pricing.RateTable{
		Discounts: map[domain.Tier]decimal.Decimal{
			domain.TierRegular: cfg.Pricing.RegularDiscount,
			domain.TierStudent: cfg.Pricing.StudentDiscount,
			domain.TierVIP:     cfg.Pricing.VIPDiscount,
		},
		TaxRate: cfg.Pricing.TaxRate,
	})

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, serviceRepo)
	customerService := service.NewCustomerService(customerRepo, cfg.Pricing.PointsThreshold)
	checkoutService := service.NewCheckoutService(
		productRepo, serviceRepo, customerRepo, transactionRepo,
		engine, cfg.Pricing.PointsThreshold, cfg.Pricing.CommitTimeout, logger,
	)
	returnService := service.NewReturnService(transactionRepo, logger)

	// Initialize handlers and register routes
	transport.NewCatalogHandler(catalogService, logger).RegisterRoutes(router)
	transport.NewCustomerHandler(customerService, logger).RegisterRoutes(router)
	transport.NewCheckoutHandler(checkoutService, returnService, logger).RegisterRoutes(router)

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

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
