package ports

import (
	"context"

	"github.com/ecoruta/portal/internal/core/domain"
)

// Session is the application session as seen by its consumers (portal, CLI).
type Session interface {
	Start(ctx context.Context)
	Login(ctx context.Context, creds domain.LoginCredentials) error
	Register(ctx context.Context, data domain.RegisterData) error
	Logout(ctx context.Context) domain.BestEffort
	UpdateUser(ctx context.Context, update domain.UserUpdate) error
	ClearError()
	State() domain.State
}
