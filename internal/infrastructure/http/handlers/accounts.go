package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/core/ports"
	"github.com/ecoruta/portal/internal/devserver"
	"github.com/ecoruta/portal/internal/infrastructure/http/middleware"
)

// AccountService is what the account endpoints need from the devserver.
type AccountService interface {
	Register(ctx context.Context, data domain.RegisterData) (*domain.User, error)
	Login(ctx context.Context, creds domain.LoginCredentials) (domain.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (domain.TokenPair, error)
	Logout(ctx context.Context, refresh string) error
	User(ctx context.Context, p devserver.Principal, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, p devserver.Principal, id int64, update domain.UserUpdate) (*domain.User, error)
	ListUsers(ctx context.Context, p devserver.Principal) ([]domain.User, error)
}

type AccountHandler struct {
	accounts AccountService
	log      zerolog.Logger
}

func NewAccountHandler(accounts AccountService, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, log: log}
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Login issues a token pair.
func (h *AccountHandler) Login(c echo.Context) error {
	var req domain.LoginCredentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detail("JSON inválido."))
	}

	pair, err := h.accounts.Login(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, tokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// Refresh mints a new access token.
func (h *AccountHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.Refresh == "" {
		return c.JSON(http.StatusBadRequest, map[string][]string{"refresh": {"Este campo es requerido."}})
	}

	pair, err := h.accounts.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, tokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// Logout revokes the refresh token in the body.
func (h *AccountHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.Refresh == "" {
		return c.JSON(http.StatusBadRequest, map[string][]string{"refresh": {"Este campo es requerido."}})
	}

	if err := h.accounts.Logout(c.Request().Context(), req.Refresh); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusResetContent)
}

// Register creates an account. Public.
func (h *AccountHandler) Register(c echo.Context) error {
	var req domain.RegisterData
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detail("JSON inválido."))
	}

	user, err := h.accounts.Register(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *AccountHandler) ListUsers(c echo.Context) error {
	p, _ := middleware.Principal(c)
	users, err := h.accounts.ListUsers(c.Request().Context(), p)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AccountHandler) GetUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, detail("No encontrado."))
	}
	p, _ := middleware.Principal(c)

	user, err := h.accounts.User(c.Request().Context(), p, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser serves both PUT and PATCH; only fields present are changed.
func (h *AccountHandler) UpdateUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, detail("No encontrado."))
	}
	var req domain.UserUpdate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detail("JSON inválido."))
	}
	p, _ := middleware.Principal(c)

	user, err := h.accounts.UpdateUser(c.Request().Context(), p, id, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// fail renders err the way the backend does.
func (h *AccountHandler) fail(c echo.Context, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, detail(ve.Msg))
	case errors.Is(err, devserver.ErrEmailTaken):
		return c.JSON(http.StatusBadRequest, map[string][]string{"email": {"Ya existe un usuario con este email."}})
	case errors.Is(err, devserver.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, detail("No active account found with the given credentials"))
	case errors.Is(err, devserver.ErrTokenInvalid):
		return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"})
	case errors.Is(err, devserver.ErrForbidden):
		return c.JSON(http.StatusForbidden, detail("No tiene permiso para realizar esta acción."))
	case errors.Is(err, ports.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, detail("No encontrado."))
	}

	h.log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return c.JSON(http.StatusInternalServerError, detail("Error interno del servidor."))
}

func detail(msg string) map[string]string {
	return map[string]string{"detail": msg}
}

func userID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
