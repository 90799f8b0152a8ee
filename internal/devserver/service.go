// Package devserver implements the auth/user contract of the EcoRuta backend
// for local development and end-to-end tests: JWT pairs signed with HS256,
// bcrypt password hashes and refresh revocation on logout.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/core/ports"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already registered")
)

// TokenConfig controls token minting.
type TokenConfig struct {
	Secret        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	RotateRefresh bool
}

// Claims is the payload of both token types.
type Claims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	Rol       string `json:"rol,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the caller identified by an access token.
type Principal struct {
	UserID int64
	Rol    domain.Role
}

// CanAccessUser reports whether p may read or change user id.
func (p Principal) CanAccessUser(id int64) bool {
	return p.UserID == id || p.Rol == domain.RoleAdmin
}

// Validator checks a struct against its validate tags.
type Validator interface {
	Validate(i any) error
}

// Accounts implements registration, token issuance and user access.
type Accounts struct {
	users    ports.UserRepository
	revoked  ports.RevocationList
	validate Validator
	cfg      TokenConfig
	now      func() time.Time
	log      zerolog.Logger
}

func NewAccounts(users ports.UserRepository, revoked ports.RevocationList, validate Validator, cfg TokenConfig, log zerolog.Logger) *Accounts {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 5 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 24 * time.Hour
	}
	return &Accounts{
		users:    users,
		revoked:  revoked,
		validate: validate,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With().Str("component", "devserver").Logger(),
	}
}

func (a *Accounts) Register(ctx context.Context, data domain.RegisterData) (*domain.User, error) {
	if data.Password != data.Password2 {
		return nil, domain.ErrPasswordMismatch
	}
	if err := a.validate.Validate(data); err != nil {
		return nil, err
	}
	if data.Rol == "" {
		data.Rol = domain.RoleClient
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	created, err := a.users.Create(ctx, &ports.StoredUser{
		User: domain.User{
			Email:         strings.ToLower(strings.TrimSpace(data.Email)),
			Nombre:        data.Nombre,
			Apellido:      data.Apellido,
			Rol:           data.Rol,
			Telefono:      data.Telefono,
			Direccion:     data.Direccion,
			Empresa:       data.Empresa,
			Localidad:     data.Localidad,
			FechaRegistro: now,
			Activo:        true,
		},
		PasswordHash: string(hash),
	})
	if errors.Is(err, ports.ErrUserExists) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	a.log.Info().Int64("user_id", created.ID).Str("rol", string(created.Rol)).Msg("user registered")
	return &created.User, nil
}

func (a *Accounts) Login(ctx context.Context, creds domain.LoginCredentials) (domain.TokenPair, error) {
	if creds.Email == "" || creds.Password == "" {
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	user, err := a.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(creds.Email)))
	if errors.Is(err, ports.ErrUserNotFound) {
		return domain.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.TokenPair{}, err
	}

	if !user.Activo || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	now := a.now().UTC()
	user.FechaUltimaConexion = &now
	if _, err := a.users.Update(ctx, user); err != nil {
		a.log.Warn().Err(err).Int64("user_id", user.ID).Msg("could not record last login")
	}

	return a.issuePair(&user.User)
}

// Refresh mints a new access token from a refresh token. With RotateRefresh
// the old refresh token is revoked and a new one returned.
func (a *Accounts) Refresh(ctx context.Context, refresh string) (domain.TokenPair, error) {
	claims, err := a.verify(ctx, refresh, tokenTypeRefresh)
	if err != nil {
		return domain.TokenPair{}, err
	}

	user, err := a.users.FindByID(ctx, claims.UserID)
	if err != nil || !user.Activo {
		return domain.TokenPair{}, ErrTokenInvalid
	}

	if !a.cfg.RotateRefresh {
		access, err := a.sign(&user.User, tokenTypeAccess, a.cfg.AccessTTL)
		if err != nil {
			return domain.TokenPair{}, err
		}
		return domain.TokenPair{Access: access}, nil
	}

	if err := a.revoke(ctx, claims); err != nil {
		return domain.TokenPair{}, err
	}
	return a.issuePair(&user.User)
}

// Logout revokes refresh. Unknown or already expired tokens are rejected.
func (a *Accounts) Logout(ctx context.Context, refresh string) error {
	claims, err := a.verify(ctx, refresh, tokenTypeRefresh)
	if err != nil {
		return err
	}
	return a.revoke(ctx, claims)
}

// Authenticate verifies an access token.
func (a *Accounts) Authenticate(ctx context.Context, token string) (Principal, error) {
	claims, err := a.verify(ctx, token, tokenTypeAccess)
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: claims.UserID, Rol: domain.Role(claims.Rol)}, nil
}

func (a *Accounts) User(ctx context.Context, p Principal, id int64) (*domain.User, error) {
	if !p.CanAccessUser(id) {
		return nil, ErrForbidden
	}
	u, err := a.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &u.User, nil
}

// UpdateUser applies a partial update. Role and points are not writable
// through this path.
func (a *Accounts) UpdateUser(ctx context.Context, p Principal, id int64, update domain.UserUpdate) (*domain.User, error) {
	if !p.CanAccessUser(id) {
		return nil, ErrForbidden
	}
	u, err := a.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*update.Email))
	}
	if update.Nombre != nil {
		u.Nombre = *update.Nombre
	}
	if update.Apellido != nil {
		u.Apellido = *update.Apellido
	}
	if update.Telefono != nil {
		u.Telefono = *update.Telefono
	}
	if update.Direccion != nil {
		u.Direccion = *update.Direccion
	}
	if update.Localidad != nil {
		u.Localidad = *update.Localidad
	}

	saved, err := a.users.Update(ctx, u)
	if errors.Is(err, ports.ErrUserExists) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return &saved.User, nil
}

func (a *Accounts) ListUsers(ctx context.Context, p Principal) ([]domain.User, error) {
	if p.Rol != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	stored, err := a.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(stored))
	for _, s := range stored {
		out = append(out, s.User)
	}
	return out, nil
}

func (a *Accounts) issuePair(user *domain.User) (domain.TokenPair, error) {
	access, err := a.sign(user, tokenTypeAccess, a.cfg.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := a.sign(user, tokenTypeRefresh, a.cfg.RefreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{Access: access, Refresh: refresh}, nil
}

func (a *Accounts) sign(user *domain.User, tokenType string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		UserID:    user.ID,
		TokenType: tokenType,
		Rol:       string(user.Rol),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(a.cfg.Secret))
}

func (a *Accounts) verify(ctx context.Context, token, tokenType string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(a.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%w: expected %s token", ErrTokenInvalid, tokenType)
	}

	if tokenType == tokenTypeRefresh {
		revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", ErrTokenInvalid)
		}
	}
	return claims, nil
}

func (a *Accounts) revoke(ctx context.Context, claims *Claims) error {
	if err := a.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Unix()); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
