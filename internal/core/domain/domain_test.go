package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", ErrPasswordMismatch, "Las contraseñas no coinciden"},
		{"server detail", &APIError{Status: http.StatusBadRequest, Detail: "email: ya existe"}, "email: ya existe"},
		{"wrapped detail", fmt.Errorf("login: %w", &APIError{Status: 401, Detail: "nope"}), "nope"},
		{"no detail", &APIError{Status: http.StatusInternalServerError}, "fallback"},
		{"expired", fmt.Errorf("%w: refresh rejected", ErrAuthorization), MsgSessionExpired},
		{"transport", fmt.Errorf("%w: dial tcp", ErrTransport), MsgTransport},
		{"other", errors.New("boom"), "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err, "fallback"); got != tt.want {
				t.Fatalf("UserMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIError_Is(t *testing.T) {
	if !errors.Is(&APIError{Status: http.StatusUnauthorized}, ErrAuthentication) {
		t.Fatalf("401 must match ErrAuthentication")
	}
	if errors.Is(&APIError{Status: http.StatusForbidden}, ErrAuthentication) {
		t.Fatalf("403 must not match ErrAuthentication")
	}
}

func TestJoin(t *testing.T) {
	ok := Join("logout", BestEffort{Op: "clear"}, BestEffort{Op: "remote"})
	if !ok.OK() {
		t.Fatalf("expected success, got %v", ok.Err)
	}

	boom := errors.New("boom")
	res := Join("logout", BestEffort{Op: "clear"}, BestEffort{Op: "remote", Err: boom})
	if res.OK() || !errors.Is(res.Err, boom) {
		t.Fatalf("expected joined failure, got %v", res.Err)
	}
}

func TestRoleForPath(t *testing.T) {
	tests := []struct {
		path string
		want Role
		ok   bool
	}{
		{"/admin", RoleAdmin, true},
		{"/admin/users", RoleAdmin, true},
		{"/administrator", "", false},
		{"/client/requests", RoleClient, true},
		{"/company", RoleCompany, true},
		{"/profile", "", false},
	}
	for _, tt := range tests {
		got, ok := RoleForPath(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("RoleForPath(%q) = %q, %v", tt.path, got, ok)
		}
	}
}

func TestRoleHomeAndNav(t *testing.T) {
	if RoleHome(RoleCompany) != PathCompanyHome || RoleHome("desconocido") != PathClientHome {
		t.Fatalf("unexpected role homes")
	}
	nav := NavLinks(RoleAdmin)
	if nav[0].Href != PathAdminHome || nav[len(nav)-1].Href != "/notifications" {
		t.Fatalf("unexpected admin nav: %+v", nav)
	}
	if _, ok := ParseRole("cliente"); ok {
		t.Fatalf("unknown role parsed as valid")
	}
}

func TestPage_Decode(t *testing.T) {
	var paged Page[Localidad]
	if err := json.Unmarshal([]byte(`{"count":3,"next":"http://x/?page=2","previous":null,"results":[{"id":1,"nombre":"Centro"}]}`), &paged); err != nil {
		t.Fatalf("paged: %v", err)
	}
	if paged.Count != 3 || len(paged.Results) != 1 || !paged.HasNext() {
		t.Fatalf("unexpected page: %+v", paged)
	}

	var bare Page[Localidad]
	if err := json.Unmarshal([]byte(`[{"id":1},{"id":2}]`), &bare); err != nil {
		t.Fatalf("bare: %v", err)
	}
	if bare.Count != 2 || bare.HasNext() {
		t.Fatalf("unexpected page: %+v", bare)
	}
}

func TestRegisterData_Credentials(t *testing.T) {
	r := RegisterData{Email: "a@b.com", Password: "pw", Password2: "pw"}
	if c := r.Credentials(); c.Email != "a@b.com" || c.Password != "pw" {
		t.Fatalf("unexpected credentials: %+v", c)
	}
	if !(UserUpdate{}).Empty() {
		t.Fatalf("zero update must be empty")
	}
}
