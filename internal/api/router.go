// Package api is the EcoRuta portal: the HTTP surface of the application
// session, with role-guarded dashboards and backend proxies.
package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/ecoruta/portal/internal/api/docs"
	"github.com/ecoruta/portal/internal/api/handler"
	"github.com/ecoruta/portal/internal/api/middleware"
	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/core/ports"
	"github.com/ecoruta/portal/internal/infrastructure/ecoruta"
	"github.com/ecoruta/portal/internal/infrastructure/http/handlers"
	devmiddleware "github.com/ecoruta/portal/internal/infrastructure/http/middleware"
)

// Dependencies wires the portal. Registerer and Gatherer default to the
// prometheus default registry.
type Dependencies struct {
	Session    ports.Session
	Services   *ecoruta.Services
	Checks     map[string]handlers.Check
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	reg, gat := deps.Registerer, deps.Gatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gat == nil {
		gat = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(devmiddleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "ecoruta",
		Subsystem:  "portal",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Session ---
	sessions := handler.NewSessionHandler(deps.Session)
	e.GET("/", sessions.Landing)
	e.GET("/login", sessions.LoginPage)
	e.GET("/session", sessions.Show)
	e.POST("/session/login", sessions.Login)
	e.POST("/session/register", sessions.Register)
	e.POST("/session/logout", sessions.Logout)
	e.DELETE("/session/error", sessions.ClearError)
	e.PATCH("/session/user", sessions.UpdateUser, middleware.Guard(deps.Session, ""))

	// --- Role areas ---
	dashboards := handler.NewDashboardHandler(deps.Session, deps.Services.Solicitudes, deps.Log)
	resources := handler.NewResourceHandler(deps.Services, deps.Session)

	admin := e.Group(domain.PathAdminHome, middleware.Guard(deps.Session, domain.RoleAdmin))
	admin.GET("", dashboards.Show)
	admin.GET("/users", resources.List("usuarios"))
	admin.GET("/localidades", resources.List("localidades"))
	admin.GET("/tipos-residuos", resources.List("tipos-residuos"))
	admin.GET("/companies", resources.List("empresas"))
	admin.GET("/rewards", resources.List("recompensas"))
	admin.GET("/reports", resources.ZoneReport)

	client := e.Group(domain.PathClientHome, middleware.Guard(deps.Session, domain.RoleClient))
	client.GET("", dashboards.Show)
	client.GET("/requests", resources.List("solicitudes"))
	client.POST("/request-collection", resources.RequestCollection)
	client.GET("/rewards", resources.List("recompensas"))
	client.GET("/exchanges", resources.List("canjes"))
	client.POST("/exchanges", resources.Redeem)

	company := e.Group(domain.PathCompanyHome, middleware.Guard(deps.Session, domain.RoleCompany))
	company.GET("", dashboards.Show)
	company.GET("/requests", resources.List("solicitudes"))
	company.POST("/requests/:id/collect", resources.RegisterCollection)

	e.GET("/notifications", resources.List("notificaciones"), middleware.Guard(deps.Session, ""))

	// --- Ops ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gat}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
