// Package http exposes the devserver over HTTP with the same routes as the
// EcoRuta backend, rooted at /api.
package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ecoruta/portal/internal/infrastructure/http/handlers"
	"github.com/ecoruta/portal/internal/infrastructure/http/middleware"
)

// Dependencies wires the router. Registerer defaults to the prometheus
// default registry; tests pass a fresh one.
type Dependencies struct {
	Accounts      handlers.AccountService
	Authenticator middleware.Authenticator
	Checks        map[string]handlers.Check
	Registerer    prometheus.Registerer
	Log           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	reg := deps.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "ecoruta",
		Subsystem:  "devserver",
		Registerer: reg,
	}))

	accounts := handlers.NewAccountHandler(deps.Accounts, deps.Log)
	auth := middleware.Auth(deps.Authenticator)

	api := e.Group("/api")
	api.POST("/token/", accounts.Login)
	api.POST("/token/refresh/", accounts.Refresh)
	api.POST("/auth/logout/", accounts.Logout)
	api.POST("/usuarios/", accounts.Register)

	users := api.Group("/usuarios", auth)
	users.GET("/", accounts.ListUsers)
	users.GET("/:id/", accounts.GetUser)
	users.PATCH("/:id/", accounts.UpdateUser)
	users.PUT("/:id/", accounts.UpdateUser)

	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	return e
}
