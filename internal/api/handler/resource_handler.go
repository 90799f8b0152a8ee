package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/infrastructure/ecoruta"
)

// ResourceHandler proxies backend collections behind the role guard. The
// query string is forwarded untouched.
type ResourceHandler struct {
	services *ecoruta.Services
	session  StateSource
}

func NewResourceHandler(services *ecoruta.Services, session StateSource) *ResourceHandler {
	return &ResourceHandler{services: services, session: session}
}

// List returns an echo handler listing the named collection.
//
// @Summary      List a backend collection
// @Tags         resources
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /client/requests [get]
// @Router       /client/rewards [get]
// @Router       /client/exchanges [get]
// @Router       /company/requests [get]
// @Router       /admin/users [get]
// @Router       /admin/localidades [get]
// @Router       /admin/tipos-residuos [get]
// @Router       /admin/companies [get]
// @Router       /notifications [get]
func (h *ResourceHandler) List(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := h.services.Lister(name)
		if err != nil {
			return err
		}
		page, err := list(c.Request().Context(), c.QueryParams())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, page)
	}
}

// RequestCollection creates a pickup request for the signed-in client.
//
// @Summary      Request a pickup
// @Tags         resources
// @Accept       json
// @Produce      json
// @Param        body  body      domain.SolicitudCreate  true  "Pickup request"
// @Success      201   {object}  domain.Solicitud
// @Failure      400   {object}  map[string]string
// @Router       /client/request-collection [post]
func (h *ResourceHandler) RequestCollection(c echo.Context) error {
	if _, _, err := currentUser(h.session); err != nil {
		return err
	}
	var req domain.SolicitudCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "JSON inválido")
	}

	created, err := h.services.Solicitudes.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// Redeem exchanges points at a store.
//
// @Summary      Redeem points
// @Tags         resources
// @Accept       json
// @Produce      json
// @Param        body  body      domain.CanjeCreate  true  "Redemption"
// @Success      201   {object}  domain.Canje
// @Router       /client/exchanges [post]
func (h *ResourceHandler) Redeem(c echo.Context) error {
	var req domain.CanjeCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "JSON inválido")
	}

	created, err := h.services.Canjes.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// RegisterCollection records a completed pickup. Points are assigned by the
// backend and show up on the client's next user refresh.
//
// @Summary      Register a completed pickup
// @Tags         resources
// @Accept       json
// @Produce      json
// @Param        id    path      int                          true  "Request id"
// @Param        body  body      domain.RegistrarRecoleccion  true  "Pickup result"
// @Success      200   {object}  domain.Solicitud
// @Router       /company/requests/{id}/collect [post]
func (h *ResourceHandler) RegisterCollection(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Identificador inválido")
	}
	var req domain.RegistrarRecoleccion
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "JSON inválido")
	}

	updated, err := h.services.Solicitudes.RegistrarRecoleccion(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// ZoneReport passes the per-zone report through.
//
// @Summary      Zone report
// @Tags         resources
// @Produce      json
// @Param        localidad  query     int  false  "Zone id"
// @Success      200        {object}  map[string]any
// @Router       /admin/reports [get]
func (h *ResourceHandler) ZoneReport(c echo.Context) error {
	var localidad int64
	if v := c.QueryParam("localidad"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Localidad inválida")
		}
		localidad = n
	}

	raw, err := h.services.Solicitudes.ReporteLocalidad(c.Request().Context(), localidad)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, raw)
}
