package devserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/infrastructure/jwtinspect"
	"github.com/ecoruta/portal/internal/pkg/validation"
)

func newAccounts(cfg TokenConfig) (*Accounts, *MemoryUsers) {
	users := NewMemoryUsers()
	if cfg.Secret == "" {
		cfg.Secret = "secret"
	}
	return NewAccounts(users, NewMemoryRevocations(), validation.New(), cfg, zerolog.Nop()), users
}

func registration(email string) domain.RegisterData {
	return domain.RegisterData{
		Email: email, Password: "Secret123", Password2: "Secret123",
		Nombre: "Ana", Apellido: "Ruiz", Localidad: 1,
	}
}

func TestAccounts_Register_Success(t *testing.T) {
	acc, users := newAccounts(TokenConfig{})

	user, err := acc.Register(context.Background(), registration("Ana@Example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == 0 || user.Rol != domain.RoleClient || !user.Activo {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.Email != "ana@example.com" {
		t.Fatalf("expected normalised email, got %q", user.Email)
	}

	stored, _ := users.FindByID(context.Background(), user.ID)
	if stored.PasswordHash == "Secret123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Secret123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAccounts_Register_Validation(t *testing.T) {
	acc, _ := newAccounts(TokenConfig{})
	ctx := context.Background()

	mismatch := registration("a@b.com")
	mismatch.Password2 = "other"
	if _, err := acc.Register(ctx, mismatch); !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}

	bad := registration("not-an-email")
	if _, err := acc.Register(ctx, bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := acc.Register(ctx, registration("a@b.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := acc.Register(ctx, registration("A@B.com")); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAccounts_Login(t *testing.T) {
	acc, _ := newAccounts(TokenConfig{})
	ctx := context.Background()
	user, _ := acc.Register(ctx, registration("a@b.com"))

	pair, err := acc.Login(ctx, domain.LoginCredentials{Email: "a@b.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}

	claims, err := jwtinspect.New().Decode(pair.Access)
	if err != nil {
		t.Fatalf("decode access: %v", err)
	}
	if claims.SubjectID != "1" || claims.TokenType != tokenTypeAccess || !claims.HasExpiry() {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	got, _ := acc.User(ctx, Principal{UserID: user.ID}, user.ID)
	if got.FechaUltimaConexion == nil {
		t.Fatalf("expected last login recorded")
	}
}

func TestAccounts_Login_InvalidCredentials(t *testing.T) {
	acc, _ := newAccounts(TokenConfig{})
	ctx := context.Background()
	_, _ = acc.Register(ctx, registration("a@b.com"))

	cases := []domain.LoginCredentials{
		{Email: "a@b.com", Password: "wrong"},
		{Email: "nobody@b.com", Password: "Secret123"},
		{},
	}
	for _, creds := range cases {
		if _, err := acc.Login(ctx, creds); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%+v: expected ErrInvalidCredentials, got %v", creds, err)
		}
	}
}

func TestAccounts_RefreshAndLogout(t *testing.T) {
	acc, _ := newAccounts(TokenConfig{})
	ctx := context.Background()
	_, _ = acc.Register(ctx, registration("a@b.com"))
	pair, _ := acc.Login(ctx, domain.LoginCredentials{Email: "a@b.com", Password: "Secret123"})

	renewed, err := acc.Refresh(ctx, pair.Refresh)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if renewed.Access == "" || renewed.Refresh != "" {
		t.Fatalf("expected access only without rotation, got %+v", renewed)
	}

	if _, err := acc.Refresh(ctx, pair.Access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("access token must not refresh, got %v", err)
	}

	if err := acc.Logout(ctx, pair.Refresh); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := acc.Refresh(ctx, pair.Refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("revoked refresh token accepted: %v", err)
	}
}

func TestAccounts_RefreshRotation(t *testing.T) {
	acc, _ := newAccounts(TokenConfig{RotateRefresh: true})
	ctx := context.Background()
	_, _ = acc.Register(ctx, registration("a@b.com"))
	pair, _ := acc.Login(ctx, domain.LoginCredentials{Email: "a@b.com", Password: "Secret123"})

	renewed, err := acc.Refresh(ctx, pair.Refresh)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if renewed.Refresh == "" || renewed.Refresh == pair.Refresh {
		t.Fatalf("expected a rotated refresh token")
	}
	if _, err := acc.Refresh(ctx, pair.Refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("rotated refresh token must be single use, got %v", err)
	}
}

func TestAccounts_Authenticate(t *testing.T) {
	acc, _ := newAccounts(TokenConfig{AccessTTL: time.Minute})
	ctx := context.Background()
	user, _ := acc.Register(ctx, registration("a@b.com"))
	pair, _ := acc.Login(ctx, domain.LoginCredentials{Email: "a@b.com", Password: "Secret123"})

	p, err := acc.Authenticate(ctx, pair.Access)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.UserID != user.ID || p.Rol != domain.RoleClient {
		t.Fatalf("unexpected principal: %+v", p)
	}

	if _, err := acc.Authenticate(ctx, pair.Refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("refresh token accepted as access: %v", err)
	}

	acc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := acc.Authenticate(ctx, pair.Access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expired access token accepted: %v", err)
	}
}

func TestAccounts_UserAccess(t *testing.T) {
	acc, _ := newAccounts(TokenConfig{})
	ctx := context.Background()
	ana, _ := acc.Register(ctx, registration("ana@b.com"))
	luis, _ := acc.Register(ctx, registration("luis@b.com"))

	self := Principal{UserID: ana.ID, Rol: domain.RoleClient}
	admin := Principal{UserID: 99, Rol: domain.RoleAdmin}

	if _, err := acc.User(ctx, self, luis.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := acc.ListUsers(ctx, self); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	nombre := "Luisa"
	updated, err := acc.UpdateUser(ctx, admin, luis.ID, domain.UserUpdate{Nombre: &nombre})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Nombre != "Luisa" || updated.Apellido != "Ruiz" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	taken := "ana@b.com"
	if _, err := acc.UpdateUser(ctx, admin, luis.ID, domain.UserUpdate{Email: &taken}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	all, err := acc.ListUsers(ctx, admin)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListUsers = %v, %v", all, err)
	}
}
