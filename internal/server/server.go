package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shopfront/internal/config"
	custommiddleware "shopfront/internal/middleware"
	"shopfront/internal/repository"
	"shopfront/internal/service"
	"shopfront/internal/transport"
	"shopfront/internal/upload"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const maxCommentBody = 64 << 10

// Backend is the storage the server runs against.
type Backend struct {
	Units  repository.UnitOfWorkFactory
	Health func(ctx context.Context) map[string]string
	Close  func() error
}

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	backend Backend
	redis   *redis.Client
}

// NewServer wires services and handlers onto a chi router. redisClient may
// be nil, which disables comment rate limiting.
func NewServer(cfg *config.Config, logger *zap.Logger, backend Backend, files upload.Store, redisClient *redis.Client) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{"status": "up"}
		if backend.Health != nil {
			health = backend.Health(r.Context())
		}

		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})

	// Initialize services
	maxImageKB := cfg.Upload.MaxImageSizeKB
	productService := service.NewProductService(backend.Units, files, maxImageKB)
	categoryService := service.NewCategoryService(backend.Units)
	brandService := service.NewBrandService(backend.Units)
	imageService := service.NewProductImageService(backend.Units, files, maxImageKB)
	commentService := service.NewProductCommentService(backend.Units)
	timerService := service.NewDiscountTimerService(backend.Units)

	// Initialize handlers
	productHandler := transport.NewProductHandler(productService, categoryService, brandService, imageService, commentService, logger)
	categoryHandler := transport.NewCategoryHandler(categoryService, logger)
	brandHandler := transport.NewBrandHandler(brandService, logger)
	moderationHandler := transport.NewModerationHandler(commentService, imageService, logger)
	discountHandler := transport.NewDiscountHandler(timerService, logger)
	storefrontHandler := transport.NewStorefrontHandler(productService, imageService, commentService, timerService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)

	// Admin area
	router.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(custommiddleware.RequireRole(cfg.Auth.AdminRoles, logger))
		r.Use(chimiddleware.RequestSize(cfg.Upload.MaxBodyBytes()))

		productHandler.RegisterRoutes(r)
		categoryHandler.RegisterRoutes(r)
		brandHandler.RegisterRoutes(r)
		moderationHandler.RegisterRoutes(r)
		discountHandler.RegisterRoutes(r)
	})

	// Storefront
	commentGuard := []func(http.Handler) http.Handler{authMiddleware, chimiddleware.RequestSize(maxCommentBody)}
	if redisClient != nil {
		commentGuard = append(commentGuard, custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "ratelimit:comments",
		}, logger))
	}
	storefrontHandler.RegisterRoutes(router, commentGuard...)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:  cfg,
		logger:  logger,
		backend: backend,
		redis:   redisClient,
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.backend.Close != nil {
		if err := s.backend.Close(); err != nil {
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
