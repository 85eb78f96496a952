package api

import (
	"database/sql"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/leadstack/crm-api/internal/api/handler"
	"github.com/leadstack/crm-api/internal/api/middleware"
	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/ports"
	"github.com/leadstack/crm-api/internal/core/service"
	"github.com/leadstack/crm-api/internal/infrastructure/config"
	"github.com/leadstack/crm-api/internal/infrastructure/db/postgres"
	"github.com/leadstack/crm-api/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb is nil when the in-memory bus is active; the readiness probe then skips
// the Redis check.
func NewRouter(db *sql.DB, rdb *redis.Client, eventBus ports.EventBus, mailer ports.Mailer, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Component("http"), cfg.IsDevelopment())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("crm"))

	// --- Repositories ---
	userRepo := postgres.NewUserRepository(db)
	leadRepo := postgres.NewLeadRepository(db)
	activityRepo := postgres.NewActivityRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// --- Services ---
	notifier := service.NewNotifier(notificationRepo, eventBus, mailer, cfg.SMTP.Timeout, logger.Component("notifier"))
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	leadService := service.NewLeadService(leadRepo, activityRepo, userRepo, notifier, logger.Component("leads"))
	activityService := service.NewActivityService(activityRepo, leadRepo, userRepo, notifier, logger.Component("activities"))
	notificationService := service.NewNotificationService(notificationRepo, logger.Component("notifications"))
	userService := service.NewUserService(userRepo, leadRepo, logger.Component("users"))
	dashboardService := service.NewDashboardService(leadRepo, activityRepo, logger.Component("dashboard"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	leadHandler := handler.NewLeadHandler(leadService)
	activityHandler := handler.NewActivityHandler(activityService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	userHandler := handler.NewUserHandler(userService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	wsHandler := handler.NewWSHandler(eventBus, cfg.JWTSecret, logger.Component("ws"))

	authRequired := middleware.Auth(cfg.JWTSecret)
	managers := middleware.RBAC(domain.RoleAdmin, domain.RoleManager)
	admins := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authRequired)

	// --- Lead routes ---
	leads := e.Group("/api/leads", authRequired)
	leads.POST("", leadHandler.Create)
	leads.GET("", leadHandler.List)
	leads.GET("/:id", leadHandler.Get)
	leads.PUT("/:id", leadHandler.Update)
	leads.DELETE("/:id", leadHandler.Delete, managers)

	// --- Activity routes ---
	activities := e.Group("/api/activities", authRequired)
	activities.POST("", activityHandler.Add)
	activities.GET("", activityHandler.List)
	activities.GET("/:id", activityHandler.Get)

	// --- Notification routes ---
	notifications := e.Group("/api/notifications", authRequired)
	notifications.GET("", notificationHandler.List)
	notifications.PUT("/read-all", notificationHandler.MarkAllRead)
	notifications.PUT("/:id/read", notificationHandler.MarkRead)

	// --- User administration ---
	users := e.Group("/api/users", authRequired, managers)
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create, admins)
	users.PUT("/:id", userHandler.Update, admins)
	users.DELETE("/:id", userHandler.Delete, admins)

	// --- Dashboard ---
	e.GET("/api/dashboard/stats", dashboardHandler.Stats, authRequired)

	// --- Realtime ---
	e.GET("/ws", wsHandler.Serve)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
