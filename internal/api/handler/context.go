package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecoruta/portal/internal/core/domain"
)

// MsgInternal is shown for errors without a user-facing message.
const MsgInternal = "Error interno del servidor."

// StateSource exposes the session snapshot.
type StateSource interface {
	State() domain.State
}

// currentUser returns the signed-in user. Guarded routes only reach the
// handler with a session, so a missing user means it ended in between.
func currentUser(s StateSource) (domain.State, *domain.User, error) {
	st := s.State()
	if !st.IsAuthenticated || st.User == nil {
		return st, nil, echo.NewHTTPError(http.StatusUnauthorized, domain.MsgSessionExpired)
	}
	return st, st.User, nil
}
