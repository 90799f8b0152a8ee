package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ecoruta/portal/internal/core/domain"
)

type stubSession struct {
	state    domain.State
	loginFn  func(ctx context.Context, creds domain.LoginCredentials) error
	logoutFn func(ctx context.Context) domain.BestEffort
	cleared  bool
}

func (s *stubSession) Start(context.Context) {}

func (s *stubSession) Login(ctx context.Context, creds domain.LoginCredentials) error {
	return s.loginFn(ctx, creds)
}

func (s *stubSession) Register(context.Context, domain.RegisterData) error { return nil }

func (s *stubSession) Logout(ctx context.Context) domain.BestEffort { return s.logoutFn(ctx) }

func (s *stubSession) UpdateUser(context.Context, domain.UserUpdate) error { return nil }

func (s *stubSession) ClearError() { s.cleared = true; s.state.Error = "" }

func (s *stubSession) State() domain.State { return s.state }

func signedIn(rol domain.Role) domain.State {
	return domain.State{
		Status:          domain.StatusAuthenticated,
		IsAuthenticated: true,
		User:            &domain.User{ID: 7, Email: "a@b.com", Rol: rol},
	}
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func TestSessionHandler_Login_Success(t *testing.T) {
	e := echo.New()
	stub := &stubSession{}
	stub.loginFn = func(ctx context.Context, creds domain.LoginCredentials) error {
		if creds.Email != "a@b.com" || creds.Password != "pw" {
			t.Fatalf("unexpected credentials: %+v", creds)
		}
		stub.state = signedIn(domain.RoleCompany)
		return nil
	}
	h := NewSessionHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/session/login", `{"email":"a@b.com","password":"pw","next":"/company/requests"}`)
	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Redirect != "/company/requests" {
		t.Fatalf("expected redirect back to next, got %q", resp.Redirect)
	}
	if len(resp.Nav) == 0 || resp.Nav[0].Href != domain.PathCompanyHome {
		t.Fatalf("unexpected nav: %+v", resp.Nav)
	}
}

func TestSessionHandler_Login_ForeignNext(t *testing.T) {
	e := echo.New()
	stub := &stubSession{}
	stub.loginFn = func(context.Context, domain.LoginCredentials) error {
		stub.state = signedIn(domain.RoleClient)
		return nil
	}
	h := NewSessionHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/session/login", `{"email":"a@b.com","password":"pw","next":"/admin"}`)
	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp sessionResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Redirect != domain.PathClientHome {
		t.Fatalf("expected role home, got %q", resp.Redirect)
	}
}

func TestSessionHandler_Login_Failure(t *testing.T) {
	e := echo.New()
	stub := &stubSession{}
	stub.loginFn = func(context.Context, domain.LoginCredentials) error {
		stub.state = domain.State{Status: domain.StatusAnonymous, Error: "Credenciales inválidas"}
		return &domain.APIError{Status: http.StatusUnauthorized, Detail: "Credenciales inválidas"}
	}
	h := NewSessionHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/session/login", `{"email":"a@b.com","password":"bad"}`)
	err := h.Login(e.NewContext(req, rec))

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected echo.HTTPError, got %v", err)
	}
	if he.Code != http.StatusUnauthorized || he.Message != "Credenciales inválidas" {
		t.Fatalf("unexpected error: %d %v", he.Code, he.Message)
	}
}

func TestSessionHandler_Login_InFlight(t *testing.T) {
	e := echo.New()
	stub := &stubSession{state: domain.State{Status: domain.StatusChecking, IsLoading: true, Error: "viejo"}}
	stub.loginFn = func(context.Context, domain.LoginCredentials) error { return domain.ErrOperationInFlight }
	h := NewSessionHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/session/login", `{"email":"a@b.com","password":"pw"}`)
	err := h.Login(e.NewContext(req, rec))

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
	if he.Message == "viejo" {
		t.Fatalf("stale session error must not describe an in-flight rejection")
	}
}

func TestSessionHandler_Logout_ReportsRemoteFailure(t *testing.T) {
	e := echo.New()
	stub := &stubSession{state: domain.State{Status: domain.StatusAnonymous}}
	stub.logoutFn = func(context.Context) domain.BestEffort {
		return domain.BestEffort{Op: "logout", Err: errors.New("remote logout: boom")}
	}
	h := NewSessionHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/session/logout", "")
	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("logout must not fail: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp logoutResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.State.Status != domain.StatusAnonymous || !strings.Contains(resp.RemoteError, "boom") {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSessionHandler_Landing(t *testing.T) {
	tests := []struct {
		name     string
		state    domain.State
		wantCode int
		wantLoc  string
	}{
		{"loading", domain.State{Status: domain.StatusUninitialized, IsLoading: true}, http.StatusServiceUnavailable, ""},
		{"anonymous", domain.State{Status: domain.StatusAnonymous}, http.StatusFound, domain.PathLogin},
		{"admin", signedIn(domain.RoleAdmin), http.StatusFound, domain.PathAdminHome},
		{"client", signedIn(domain.RoleClient), http.StatusFound, domain.PathClientHome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			h := NewSessionHandler(&stubSession{state: tt.state})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			err := h.Landing(e.NewContext(req, rec))
			if tt.wantCode == http.StatusServiceUnavailable {
				var he *echo.HTTPError
				if !errors.As(err, &he) || he.Code != tt.wantCode {
					t.Fatalf("expected %d, got %v", tt.wantCode, err)
				}
				if rec.Header().Get("Retry-After") == "" {
					t.Fatalf("expected Retry-After header")
				}
				return
			}
			if rec.Code != tt.wantCode || rec.Header().Get(echo.HeaderLocation) != tt.wantLoc {
				t.Fatalf("expected %d %s, got %d %s", tt.wantCode, tt.wantLoc, rec.Code, rec.Header().Get(echo.HeaderLocation))
			}
		})
	}
}

func TestSessionHandler_ClearError(t *testing.T) {
	e := echo.New()
	stub := &stubSession{state: domain.State{Status: domain.StatusAnonymous, Error: "x"}}
	h := NewSessionHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/session/error", nil)
	rec := httptest.NewRecorder()
	if err := h.ClearError(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || !stub.cleared {
		t.Fatalf("expected 204 and cleared error, got %d", rec.Code)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrPasswordMismatch, http.StatusBadRequest},
		{domain.ErrOperationInFlight, http.StatusConflict},
		{domain.ErrNoRefreshToken, http.StatusUnauthorized},
		{domain.ErrTransport, http.StatusBadGateway},
		{&domain.APIError{Status: http.StatusForbidden}, http.StatusForbidden},
		{&domain.APIError{Status: http.StatusInternalServerError}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
