package ports

import (
	"context"

	"github.com/ecoruta/portal/internal/core/domain"
)

// KeyValueStore is the persistent storage behind the token store.
// Get returns ok=false for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// TokenStore keeps the token pair. Reads never fail: a storage error reads
// as an absent token. Writes report failures through BestEffort.
type TokenStore interface {
	Access(ctx context.Context) string
	Refresh(ctx context.Context) string
	Save(ctx context.Context, pair domain.TokenPair) domain.BestEffort
	SetAccess(ctx context.Context, token string) domain.BestEffort
	// Renew stores pair only if refresh is still the stored refresh token,
	// and reports whether it did.
	Renew(ctx context.Context, refresh string, pair domain.TokenPair) (bool, domain.BestEffort)
	Clear(ctx context.Context) domain.BestEffort
}

// TokenInspector reads claims out of a token without verifying it.
type TokenInspector interface {
	Decode(token string) (domain.Claims, error)
	IsExpired(token string) bool
}
