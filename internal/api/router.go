package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/taskboard/task-manager/docs"
	"github.com/taskboard/task-manager/internal/api/handler"
	"github.com/taskboard/task-manager/internal/api/middleware"
	"github.com/taskboard/task-manager/internal/core/domain"
	"github.com/taskboard/task-manager/internal/core/ports"
	"github.com/taskboard/task-manager/internal/infrastructure/http/handlers"
	"github.com/taskboard/task-manager/internal/infrastructure/realtime"
	"github.com/taskboard/task-manager/pkg/logger"
)

// RouterConfig carries everything NewRouter needs. Mongo and Redis are only
// used by the readiness probe and may be nil.
type RouterConfig struct {
	Users         ports.UserRepository
	Tokens        ports.TokenService
	Auth          ports.AuthService
	Tasks         ports.TaskService
	Notifications ports.NotificationService
	Hub           *realtime.Hub

	Mongo *mongo.Database
	Redis *redis.Client

	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// process-wide default registry, where the domain metrics live.
	Registry *prometheus.Registry

	AllowOrigins []string
	Logger       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(logger.Middleware(cfg.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(promConfig(cfg.Registry)))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(cfg.Auth)
	taskHandler := handler.NewTaskHandler(cfg.Tasks)
	notificationHandler := handler.NewNotificationHandler(cfg.Notifications)
	realtimeHandler := handler.NewRealtimeHandler(cfg.Hub, cfg.Tokens, cfg.Users, cfg.AllowOrigins, cfg.Logger)
	authMiddleware := middleware.Auth(cfg.Tokens, cfg.Users)
	anyRole := middleware.RBAC(domain.Roles...)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(cfg.Mongo, cfg.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", promHandler(cfg.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Realtime channel (authenticates its own token) ---
	e.GET("/ws", realtimeHandler.Connect)

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/users", authHandler.ListUsers, authMiddleware)
	api.GET("/session", authHandler.Session, authMiddleware)

	// --- Task routes ---
	tasks := api.Group("/tasks", authMiddleware)
	tasks.GET("/summary", taskHandler.Summary)
	tasks.GET("/tasklist", taskHandler.ListByStatus)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create, anyRole)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete, anyRole)

	// --- Notification routes ---
	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("", notificationHandler.ListUnread)
	notifications.PUT("/:id/read", notificationHandler.MarkRead)

	return e
}

func promConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{Subsystem: "taskmanager"}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func promHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
