package ecoruta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/core/ports"
	"github.com/ecoruta/portal/internal/infrastructure/apiclient"
)

// Endpoints is the auth/user contract of the backend.
type Endpoints struct {
	Login  string
	Users  string
	Logout string
	// Me is a dedicated current-user endpoint. When empty the current user
	// is read from Users/{id}/ with the id taken from the access token.
	Me string
}

// DefaultEndpoints returns the backend contract.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:  "/token/",
		Users:  "/usuarios/",
		Logout: "/auth/logout/",
	}
}

// Gateway implements ports.AuthGateway over the API client.
type Gateway struct {
	api       API
	tokens    ports.TokenStore
	inspector ports.TokenInspector
	ep        Endpoints
}

var _ ports.AuthGateway = (*Gateway)(nil)

func NewGateway(api API, tokens ports.TokenStore, inspector ports.TokenInspector, ep Endpoints) *Gateway {
	def := DefaultEndpoints()
	if ep.Login == "" {
		ep.Login = def.Login
	}
	if ep.Users == "" {
		ep.Users = def.Users
	}
	if ep.Logout == "" {
		ep.Logout = def.Logout
	}
	return &Gateway{api: api, tokens: tokens, inspector: inspector, ep: ep}
}

type loginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (g *Gateway) Login(ctx context.Context, creds domain.LoginCredentials) (domain.TokenPair, error) {
	var raw json.RawMessage
	if err := g.api.Do(ctx, http.MethodPost, g.ep.Login, nil, creds, &raw, apiclient.Public()); err != nil {
		return domain.TokenPair{}, err
	}

	var resp loginResponse
	if err := decodeBody(raw, &resp); err != nil {
		return domain.TokenPair{}, err
	}
	if resp.Access == "" {
		return domain.TokenPair{}, &domain.APIError{Status: http.StatusBadGateway, Detail: "respuesta de login sin token de acceso"}
	}
	return domain.TokenPair{Access: resp.Access, Refresh: resp.Refresh}, nil
}

func (g *Gateway) Register(ctx context.Context, data domain.RegisterData) (*domain.User, error) {
	return g.user(ctx, http.MethodPost, g.ep.Users, data, apiclient.Public())
}

// CurrentUser fetches the user owning the stored access token.
func (g *Gateway) CurrentUser(ctx context.Context) (*domain.User, error) {
	if g.ep.Me != "" {
		return g.user(ctx, http.MethodGet, g.ep.Me, nil)
	}

	claims, err := g.inspector.Decode(g.tokens.Access(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthorization, err)
	}
	id, err := parseSubject(claims.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthorization, err)
	}
	return g.user(ctx, http.MethodGet, itemPath(g.ep.Users, id), nil)
}

func (g *Gateway) UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error) {
	return g.user(ctx, http.MethodPatch, itemPath(g.ep.Users, id), update)
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// Logout asks the backend to invalidate the refresh token. The token itself
// authenticates the call, so it works after the local tokens are gone.
func (g *Gateway) Logout(ctx context.Context, refresh string) error {
	return g.api.Do(ctx, http.MethodPost, g.ep.Logout, nil, logoutRequest{Refresh: refresh}, nil, apiclient.Public())
}

func (g *Gateway) user(ctx context.Context, method, path string, body any, opts ...apiclient.RequestOption) (*domain.User, error) {
	var raw json.RawMessage
	if err := g.api.Do(ctx, method, path, nil, body, &raw, opts...); err != nil {
		return nil, err
	}
	var u domain.User
	if err := decodeBody(raw, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func parseSubject(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: subject %q is not a user id", domain.ErrInvalidToken, s)
	}
	return id, nil
}
