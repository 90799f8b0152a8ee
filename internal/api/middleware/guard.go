// Package middleware holds the portal's echo middleware.
package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/ecoruta/portal/internal/api/metrics"
	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/core/service"
)

// RetryAfterSeconds is sent with 503 while the session is still loading.
const RetryAfterSeconds = "1"

// StateSource is the part of the session the guard reads.
type StateSource interface {
	State() domain.State
}

// Guard protects a route group. An empty role only requires a session.
//
//	pending            → 503 + Retry-After
//	redirect_login     → 302 /login?next=<requested path>
//	redirect_role_home → 302 to the caller's role home
func Guard(session StateSource, role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requested := c.Request().URL.Path
			d := service.Decide(session.State(), role, requested)
			metrics.GuardDecisionsTotal.WithLabelValues(string(d.Outcome)).Inc()

			switch d.Outcome {
			case service.OutcomePending:
				c.Response().Header().Set("Retry-After", RetryAfterSeconds)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"error": "La sesión se está verificando",
				})
			case service.OutcomeRedirectLogin:
				return c.Redirect(http.StatusFound, LoginURL(d.From))
			case service.OutcomeRedirectRoleHome:
				return c.Redirect(http.StatusFound, d.Path)
			}
			return next(c)
		}
	}
}

// LoginURL is the login page carrying from as the return path.
func LoginURL(from string) string {
	if from == "" {
		return domain.PathLogin
	}
	return domain.PathLogin + "?next=" + url.QueryEscape(from)
}
