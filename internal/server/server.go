package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"joules-shop/internal/cart"
	"joules-shop/internal/catalog"
	"joules-shop/internal/config"
	custommiddleware "joules-shop/internal/middleware"
	"joules-shop/internal/repository"
	"joules-shop/internal/service"
	"joules-shop/internal/session"
	"joules-shop/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config   *config.Config
	logger   *zap.Logger
	db       *sql.DB
	redis    *redis.Client
	registry *cart.Registry
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	sessionStore := session.NewRedisStore(redisClient, sessionTTL)
	registry := cart.NewRegistry(sessionTTL)

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.SessionMiddleware(sessionStore, sessionTTL, logger))
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 100,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	productCatalog := catalog.NewPostgres(db)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	orderService := service.NewOrderService(orderRepo)
	userService := service.NewUserService(userRepo, cfg.JWT.Secret, time.Duration(cfg.JWT.AccessExpiry)*time.Minute)

	// Initialize handlers
	productHandler := transport.NewProductHandler(productCatalog, logger)
	cartHandler := transport.NewCartHandler(registry, productCatalog, sessionStore, logger)
	orderHandler := transport.NewOrderHandler(orderService, registry, sessionStore, logger)
	userHandler := transport.NewUserHandler(userService, sessionStore, registry, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)

	// Register routes. Browsing and the cart only need a session; orders and
	// the profile need an authenticated user.
	productHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router)
	userHandler.RegisterPublicRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		orderHandler.RegisterRoutes(r)
		userHandler.RegisterProtectedRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:   cfg,
		logger:   logger,
		db:       db,
		redis:    redisClient,
		registry: registry,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.registry.Close()

	if err := s.redis.Close(); err != nil {
		s.logger.Error("Failed to close redis connection", zap.Error(err))
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
