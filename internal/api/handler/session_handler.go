package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/core/ports"
	"github.com/ecoruta/portal/internal/core/service"
)

type SessionHandler struct {
	session ports.Session
}

func NewSessionHandler(session ports.Session) *SessionHandler {
	return &SessionHandler{session: session}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Next     string `json:"next,omitempty"`
}

type registerRequest struct {
	domain.RegisterData
	Next string `json:"next,omitempty"`
}

type sessionResponse struct {
	State    domain.State     `json:"state"`
	Redirect string           `json:"redirect,omitempty"`
	Nav      []domain.NavLink `json:"nav,omitempty"`
}

type logoutResponse struct {
	State       domain.State `json:"state"`
	RemoteError string       `json:"remote_error,omitempty"`
}

func newSessionResponse(st domain.State, redirect string) sessionResponse {
	resp := sessionResponse{State: st, Redirect: redirect}
	if st.IsAuthenticated {
		resp.Nav = domain.NavLinks(st.Role())
	}
	return resp
}

// Show returns the current session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Show(c echo.Context) error {
	return c.JSON(http.StatusOK, newSessionResponse(h.session.State(), ""))
}

// Login signs in and answers with the page to open next.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials and optional return path"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "JSON inválido")
	}

	err := h.session.Login(c.Request().Context(), domain.LoginCredentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return h.failure(err)
	}

	st := h.session.State()
	return c.JSON(http.StatusOK, newSessionResponse(st, service.AfterLogin(st, req.Next).Path))
}

// Register creates the account and signs in.
//
// @Summary      Register
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account data"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "JSON inválido")
	}

	if err := h.session.Register(c.Request().Context(), req.RegisterData); err != nil {
		return h.failure(err)
	}

	st := h.session.State()
	return c.JSON(http.StatusCreated, newSessionResponse(st, service.AfterLogin(st, req.Next).Path))
}

// Logout always succeeds; a failed remote logout is reported, not raised.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  logoutResponse
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	res := h.session.Logout(c.Request().Context())

	resp := logoutResponse{State: h.session.State()}
	if !res.OK() {
		resp.RemoteError = res.Err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateUser changes the profile of the signed-in user.
//
// @Summary      Update profile
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      domain.UserUpdate  true  "Fields to change"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /session/user [patch]
func (h *SessionHandler) UpdateUser(c echo.Context) error {
	var req domain.UserUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "JSON inválido")
	}

	if err := h.session.UpdateUser(c.Request().Context(), req); err != nil {
		return h.failure(err)
	}
	return c.JSON(http.StatusOK, newSessionResponse(h.session.State(), ""))
}

// ClearError dismisses the session error.
//
// @Summary      Dismiss error
// @Tags         session
// @Success      204
// @Router       /session/error [delete]
func (h *SessionHandler) ClearError(c echo.Context) error {
	h.session.ClearError()
	return c.NoContent(http.StatusNoContent)
}

// Landing sends the caller to its dashboard, or to the login page.
//
// @Summary      Landing redirect
// @Tags         session
// @Success      302
// @Failure      503  {object}  map[string]string
// @Router       / [get]
func (h *SessionHandler) Landing(c echo.Context) error {
	d := service.Landing(h.session.State())
	if !d.IsRedirect() {
		c.Response().Header().Set("Retry-After", "1")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "La sesión se está verificando")
	}
	return c.Redirect(http.StatusFound, d.Path)
}

type loginPage struct {
	Action string `json:"action"`
	Next   string `json:"next,omitempty"`
	Error  string `json:"error,omitempty"`
}

// LoginPage tells the caller how to sign in. A signed-in caller is sent on
// to next or its dashboard.
//
// @Summary      Login page
// @Tags         session
// @Produce      json
// @Param        next  query     string  false  "Path to return to"
// @Success      200   {object}  loginPage
// @Success      302
// @Router       /login [get]
func (h *SessionHandler) LoginPage(c echo.Context) error {
	st := h.session.State()
	next := c.QueryParam("next")
	if st.IsAuthenticated {
		return c.Redirect(http.StatusFound, service.AfterLogin(st, next).Path)
	}
	return c.JSON(http.StatusOK, loginPage{Action: "/session/login", Next: next, Error: st.Error})
}

// failure reports err with the message the session recorded for it.
func (h *SessionHandler) failure(err error) error {
	msg := Message(err)
	if st := h.session.State(); st.Error != "" &&
		!errors.Is(err, domain.ErrOperationInFlight) && !errors.Is(err, domain.ErrSuperseded) {
		msg = st.Error
	}
	return echo.NewHTTPError(HTTPStatus(err), msg).SetInternal(err)
}
