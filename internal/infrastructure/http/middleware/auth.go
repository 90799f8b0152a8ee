package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/devserver"
)

// Context keys set by Auth.
const (
	KeyUserID = "user_id"
	KeyRol    = "rol"
)

// Authenticator verifies an access token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (devserver.Principal, error)
}

// Auth validates the bearer token and injects the caller into context.
// Rejections use the backend's {"detail", "code"} body so the client sees
// exactly what the real API answers.
func Auth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"detail": "Las credenciales de autenticación no se proveyeron.",
				})
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"detail": "Encabezado de autorización inválido.",
				})
			}

			p, err := authn.Authenticate(c.Request().Context(), parts[1])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"detail": "Token is invalid or expired",
					"code":   "token_not_valid",
				})
			}

			c.Set(KeyUserID, p.UserID)
			c.Set(KeyRol, p.Rol)

			return next(c)
		}
	}
}

// Principal returns the caller injected by Auth.
func Principal(c echo.Context) (devserver.Principal, bool) {
	id, ok := c.Get(KeyUserID).(int64)
	if !ok || id == 0 {
		return devserver.Principal{}, false
	}
	rol, _ := c.Get(KeyRol).(domain.Role)
	return devserver.Principal{UserID: id, Rol: rol}, true
}
