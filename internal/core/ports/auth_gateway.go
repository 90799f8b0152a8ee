package ports

import (
	"context"

	"github.com/ecoruta/portal/internal/core/domain"
)

// AuthGateway is the backend auth/user contract consumed by the session.
type AuthGateway interface {
	Login(ctx context.Context, creds domain.LoginCredentials) (domain.TokenPair, error)
	Register(ctx context.Context, data domain.RegisterData) (*domain.User, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error)
	Logout(ctx context.Context, refresh string) error
}
