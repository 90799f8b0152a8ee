package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoruta/portal/internal/api"
	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/core/service"
	"github.com/ecoruta/portal/internal/devserver"
	"github.com/ecoruta/portal/internal/infrastructure/apiclient"
	"github.com/ecoruta/portal/internal/infrastructure/ecoruta"
	devhttp "github.com/ecoruta/portal/internal/infrastructure/http"
	"github.com/ecoruta/portal/internal/infrastructure/http/handlers"
	"github.com/ecoruta/portal/internal/infrastructure/jwtinspect"
	"github.com/ecoruta/portal/internal/infrastructure/tokenstore"
	"github.com/ecoruta/portal/internal/pkg/validation"
)

type portal struct {
	e       *echo.Echo
	session *service.SessionService
}

func newPortal(t *testing.T) *portal {
	t.Helper()

	acc := devserver.NewAccounts(
		devserver.NewMemoryUsers(),
		devserver.NewMemoryRevocations(),
		validation.New(),
		devserver.TokenConfig{Secret: "portal-secret"},
		zerolog.Nop(),
	)
	backend := httptest.NewServer(devhttp.NewRouter(devhttp.Dependencies{
		Accounts:      acc,
		Authenticator: acc,
		Registerer:    prometheus.NewRegistry(),
		Log:           zerolog.Nop(),
	}))
	t.Cleanup(backend.Close)

	store := tokenstore.New(tokenstore.NewMemory(), zerolog.Nop())
	client := apiclient.New(apiclient.Config{BaseURL: backend.URL + "/api"}, store, zerolog.Nop())
	inspector := jwtinspect.New()
	sess := service.NewSessionService(
		ecoruta.NewGateway(client, store, inspector, ecoruta.DefaultEndpoints()),
		store, inspector, validation.New(), zerolog.Nop(),
	)
	client.OnSessionExpired(sess.Expire)
	sess.Start(context.Background())

	reg := prometheus.NewRegistry()
	e := api.NewRouter(api.Dependencies{
		Session:    sess,
		Services:   ecoruta.NewServices(client),
		Checks:     map[string]handlers.Check{"tokens": store.Ping},
		Registerer: reg,
		Gatherer:   reg,
		Log:        zerolog.Nop(),
	})
	return &portal{e: e, session: sess}
}

func (p *portal) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	p.e.ServeHTTP(rec, req)
	return rec
}

const adminRegistration = `{
	"email": "admin@ecoruta.mx", "password": "Secret123", "password2": "Secret123",
	"nombre": "Rosa", "apellido": "Lima", "rol": "administrador", "next": "/admin/users"
}`

func TestPortal_GuardedFlow(t *testing.T) {
	p := newPortal(t)

	rec := p.do(http.MethodGet, "/admin/users", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Fadmin%2Fusers", rec.Header().Get(echo.HeaderLocation))

	rec = p.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, domain.PathLogin, rec.Header().Get(echo.HeaderLocation))

	rec = p.do(http.MethodPost, "/session/register", adminRegistration)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg struct {
		State    domain.State `json:"state"`
		Redirect string       `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.True(t, reg.State.IsAuthenticated)
	assert.Equal(t, "/admin/users", reg.Redirect)

	rec = p.do(http.MethodGet, "/admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var dash struct {
		Role domain.Role      `json:"role"`
		Nav  []domain.NavLink `json:"nav"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, domain.RoleAdmin, dash.Role)
	assert.NotEmpty(t, dash.Nav)

	rec = p.do(http.MethodGet, "/admin/users", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var users domain.Page[domain.User]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users.Results, 1)
	assert.Equal(t, "admin@ecoruta.mx", users.Results[0].Email)

	rec = p.do(http.MethodGet, "/client", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, domain.PathAdminHome, rec.Header().Get(echo.HeaderLocation))

	rec = p.do(http.MethodPatch, "/session/user", `{"telefono":"5551234"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "5551234", p.session.State().User.Telefono)

	rec = p.do(http.MethodPost, "/session/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, p.session.State().IsAuthenticated)

	rec = p.do(http.MethodGet, "/admin", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Fadmin", rec.Header().Get(echo.HeaderLocation))
}

func TestPortal_LoginFailure(t *testing.T) {
	p := newPortal(t)

	rec := p.do(http.MethodPost, "/session/login", `{"email":"x@y.com","password":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No active account found with the given credentials", body["error"])

	rec = p.do(http.MethodGet, "/login", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No active account")

	rec = p.do(http.MethodDelete, "/session/error", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, p.session.State().Error)
}

func TestPortal_RegisterValidation(t *testing.T) {
	p := newPortal(t)

	rec := p.do(http.MethodPost, "/session/register", `{"email":"a@b.com","password":"x","password2":"y","nombre":"A","apellido":"B"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Las contraseñas no coinciden")
	assert.Equal(t, domain.StatusAnonymous, p.session.State().Status)
}

func TestPortal_Ops(t *testing.T) {
	p := newPortal(t)

	assert.Equal(t, http.StatusOK, p.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, p.do(http.MethodGet, "/health/ready", "").Code)

	p.do(http.MethodGet, "/session", "")
	rec := p.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ecoruta_portal_requests_total")
}
