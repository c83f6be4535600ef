package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/quickserve/pos-system/internal/api/handler"
	"github.com/quickserve/pos-system/internal/api/middleware"
	"github.com/quickserve/pos-system/internal/core/domain"
	"github.com/quickserve/pos-system/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The session and user services arrive pre-built because the caller restores
// the persisted session before the server starts accepting requests.
func NewRouter(sessions ports.SessionService, users ports.UserService, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("pos"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(sessions)
	userHandler := handler.NewUserHandler(users)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/session", authHandler.Session, middleware.RequireSession(sessions))
	e.POST("/auth/refresh", authHandler.Refresh, middleware.RequireSession(sessions))
	e.POST("/auth/password", authHandler.ChangePassword, middleware.RequireSession(sessions))

	// --- User management (manage-users capability required) ---
	manageUsers := middleware.RequireCapability(sessions, domain.CapManageUsers)
	e.GET("/users", userHandler.List, manageUsers)
	e.POST("/users", userHandler.Register, manageUsers)
	e.PATCH("/users/:id", userHandler.Update, manageUsers)
	e.POST("/users/:id/deactivate", userHandler.Deactivate, manageUsers)
	e.POST("/users/:id/reactivate", userHandler.Reactivate, manageUsers)

	// The active-users view backs general UI pickers; any session may read it.
	e.GET("/users/active", userHandler.ListActive, middleware.RequireSession(sessions))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)             // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness)   // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
