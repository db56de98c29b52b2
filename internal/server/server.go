// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Gentlecoder1/social-app/internal/bootstrap"
	"github.com/Gentlecoder1/social-app/internal/cache"
	"github.com/Gentlecoder1/social-app/internal/config"
	_ "github.com/Gentlecoder1/social-app/internal/docs" // swagger docs
	"github.com/Gentlecoder1/social-app/internal/middleware"
	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/notifications"
	"github.com/Gentlecoder1/social-app/internal/repository"
	"github.com/Gentlecoder1/social-app/internal/service"
	"github.com/Gentlecoder1/social-app/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	cache          *cache.Store
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	uploadLimiter  *middleware.LocalLimiter

	authService         *service.AuthService
	notificationService *service.NotificationService
	engagementService   *service.EngagementService
	graphService        *service.GraphService
	profileService      *service.ProfileService
	postService         *service.PostService
}

// NewServer connects to the database and Redis and builds a Server.
func NewServer(cfg *config.Config) (*Server, error) {
	// Redis is optional: a nil client disables cache, pub/sub and shared rate limits.
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedPreset: cfg.DevSeedPreset})
	if err != nil {
		return nil, err
	}

	uploader, err := storage.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage backend: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient, uploader)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use it with sqlite, miniredis and a fake uploader.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, uploader storage.Uploader) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("media uploader is required")
	}

	store := repository.NewStore(db)
	cacheStore := cache.NewStore(redisClient)
	notifier := notifications.NewNotifier(redisClient)
	hub := notifications.NewHub()
	publisher := notifications.NewPublisher(notifier, hub)

	maxUpload := cfg.MediaMaxUploadBytes()
	if maxUpload <= 0 {
		maxUpload = service.DefaultMaxUploadBytes
	}
	uploadRate := cfg.UploadRatePerMinute
	if uploadRate <= 0 {
		uploadRate = 20
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("social-app-api"),
		cache:          cacheStore,
		notifier:       notifier,
		hub:            hub,
		uploadLimiter:  middleware.NewLocalLimiter(uploadRate, 5),
	}

	s.notificationService = service.NewNotificationService(store, publisher)
	s.engagementService = service.NewEngagementService(store, s.notificationService)
	s.graphService = service.NewGraphService(store, s.notificationService, cacheStore)
	s.profileService = service.NewProfileService(store, s.graphService, uploader, cfg.DefaultProfilePic, maxUpload)
	s.postService = service.NewPostService(store, s.notificationService, s.profileService, uploader, maxUpload)
	s.authService = service.NewAuthService(store, cacheStore, cfg.JWTSecret, cfg.DefaultProfilePic)

	return s, nil
}

// NewApp builds the Fiber app with the server's error handler and body limit.
func (s *Server) NewApp() *fiber.App {
	bodyLimit := int(s.config.MediaMaxUploadBytes()) + 2<<20
	if bodyLimit < 4<<20 {
		bodyLimit = 4 << 20
	}
	return fiber.New(fiber.Config{
		AppName:   "Social App API",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled request error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// uploadGuard limits file uploads per user in production. Other
// environments and requests without a file part pass through.
func (s *Server) uploadGuard() fiber.Handler {
	return s.uploadLimiter.HandlerWithSkip(func(c *fiber.Ctx) bool {
		return !s.config.IsProduction() || !hasUpload(c)
	})
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if s.config.StorageBackend == "" || s.config.StorageBackend == config.StorageLocal {
		if prefix := s.config.LocalPublicBaseURL; strings.HasPrefix(prefix, "/") {
			app.Static(prefix, s.config.LocalUploadDir)
		}
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	protected := api.Group("", s.AuthRequired())

	protected.Get("/feed", s.GetFeed)
	protected.Get("/search", middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.SearchUsers)
	protected.Get("/suggestions", s.GetSuggestions)
	protected.Get("/profiles/:username", s.GetProfile)
	protected.Get("/settings", s.GetSettings)
	protected.Put("/settings", s.uploadGuard(), s.UpdateSettings)
	protected.Post("/follow", middleware.RateLimit(s.redis, 30, time.Minute, "follow"), s.ToggleFollow)

	posts := protected.Group("/posts")
	posts.Post("/", s.uploadGuard(), s.CreatePost)
	posts.Get("/saved", s.GetSavedPosts)
	// Specific /:id/:resource routes before the generic /:id route
	posts.Post("/:id/like", middleware.RateLimit(s.redis, 60, time.Minute, "like"), s.ToggleLike)
	posts.Post("/:id/comments", middleware.RateLimit(s.redis, 20, time.Minute, "comment"), s.CreateComment)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/save", s.ToggleSave)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", s.DeletePost)

	notes := protected.Group("/notifications")
	notes.Get("/", s.GetNotifications)
	notes.Post("/read-all", s.MarkAllNotificationsRead)
	notes.Post("/:id/read", s.MarkNotificationRead)
	notes.Post("/:id/delete", s.DeleteNotification)
	notes.Delete("/:id", s.DeleteNotification)

	api.Get("/ws/notifications", s.AuthRequired(), s.WebsocketHandler())
}

// AuthRequired validates the bearer token and rejects revoked tokens.
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired(s.config.JWTSecret, s.cache.IsRevoked)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports 503 when the database or a configured Redis is unreachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app, wires the hub to Redis and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.NewApp()
	s.app = app
	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
		middleware.Logger.Error("failed to start notification wiring", "error", err)
	}

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down notification hub", "error", err)
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
