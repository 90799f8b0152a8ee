package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ecoruta/portal/internal/core/domain"
)

// UserReporter loads the summary of the signed-in user.
type UserReporter interface {
	ReporteUsuario(ctx context.Context) (*domain.ReporteUsuario, error)
}

type DashboardHandler struct {
	session StateSource
	reports UserReporter
	log     zerolog.Logger
}

func NewDashboardHandler(session StateSource, reports UserReporter, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{session: session, reports: reports, log: log}
}

type dashboardResponse struct {
	Role    domain.Role            `json:"role"`
	User    *domain.User           `json:"user"`
	Puntos  int64                  `json:"puntos"`
	Nav     []domain.NavLink       `json:"nav"`
	Reporte *domain.ReporteUsuario `json:"reporte,omitempty"`
}

// Show renders the dashboard of the caller's role. The client dashboard
// carries the user report when the backend provides it.
//
// @Summary      Role dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      302
// @Failure      503  {object}  map[string]string
// @Router       /admin [get]
// @Router       /client [get]
// @Router       /company [get]
func (h *DashboardHandler) Show(c echo.Context) error {
	_, user, err := currentUser(h.session)
	if err != nil {
		return err
	}

	resp := dashboardResponse{
		Role:   user.Rol,
		User:   user,
		Puntos: user.PuntosAcumulados,
		Nav:    domain.NavLinks(user.Rol),
	}

	if user.Rol == domain.RoleClient && h.reports != nil {
		rep, err := h.reports.ReporteUsuario(c.Request().Context())
		if err != nil {
			h.log.Warn().Err(err).Int64("user_id", user.ID).Msg("user report unavailable")
		} else {
			resp.Reporte = rep
		}
	}

	return c.JSON(http.StatusOK, resp)
}
