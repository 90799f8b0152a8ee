package ports

import (
	"context"
	"errors"

	"github.com/ecoruta/portal/internal/core/domain"
)

// Repository errors shared by every UserRepository implementation.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// StoredUser is a backend account: the public user plus its password hash.
type StoredUser struct {
	domain.User
	PasswordHash string
}

// UserRepository persists the accounts served by the devserver.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*StoredUser, error)
	FindByID(ctx context.Context, id int64) (*StoredUser, error)
	Create(ctx context.Context, user *StoredUser) (*StoredUser, error)
	Update(ctx context.Context, user *StoredUser) (*StoredUser, error)
	List(ctx context.Context) ([]StoredUser, error)
}

// RevocationList remembers refresh tokens invalidated by logout.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, until int64) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
