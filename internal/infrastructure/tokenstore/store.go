// Package tokenstore persists the access/refresh token pair under fixed keys
// on top of a pluggable key-value backend.
package tokenstore

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/core/ports"
)

// Storage keys. Every reader and writer of the pair goes through Store, so
// these are the only names ever used.
const (
	KeyAccess  = "access_token"
	KeyRefresh = "refresh_token"
)

// Store implements ports.TokenStore. Backend failures never reach the
// caller: reads fall back to "absent" and writes return a BestEffort.
// Writes are serialized so that Renew cannot interleave with Clear.
type Store struct {
	backend ports.KeyValueStore
	log     zerolog.Logger

	mu sync.Mutex
}

var _ ports.TokenStore = (*Store)(nil)

func New(backend ports.KeyValueStore, log zerolog.Logger) *Store {
	return &Store{backend: backend, log: log.With().Str("component", "tokenstore").Logger()}
}

func (s *Store) Access(ctx context.Context) string { return s.get(ctx, KeyAccess) }

func (s *Store) Refresh(ctx context.Context) string { return s.get(ctx, KeyRefresh) }

// Save writes both tokens. An empty refresh token leaves the stored one
// untouched.
func (s *Store) Save(ctx context.Context, pair domain.TokenPair) domain.BestEffort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, pair)
}

// Renew saves pair only while refresh is still the stored refresh token. It
// reports false, writing nothing, when the pair was cleared or replaced
// since refresh was read.
func (s *Store) Renew(ctx context.Context, refresh string, pair domain.TokenPair) (bool, domain.BestEffort) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if refresh == "" || s.get(ctx, KeyRefresh) != refresh {
		return false, domain.BestEffort{Op: "renew tokens"}
	}
	return true, s.save(ctx, pair)
}

func (s *Store) save(ctx context.Context, pair domain.TokenPair) domain.BestEffort {
	results := []domain.BestEffort{s.set(ctx, KeyAccess, pair.Access)}
	if pair.Refresh != "" {
		results = append(results, s.set(ctx, KeyRefresh, pair.Refresh))
	}
	return domain.Join("save tokens", results...)
}

func (s *Store) SetAccess(ctx context.Context, token string) domain.BestEffort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(ctx, KeyAccess, token)
}

func (s *Store) Clear(ctx context.Context) domain.BestEffort {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := domain.BestEffort{Op: "clear tokens"}
	if err := s.backend.Delete(ctx, KeyAccess, KeyRefresh); err != nil {
		s.log.Warn().Err(err).Msg("token store clear failed")
		res.Err = err
	}
	return res
}

// Ping checks the backend; used by readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store) get(ctx context.Context, key string) string {
	v, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("token store read failed, treating as absent")
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

func (s *Store) set(ctx context.Context, key, value string) domain.BestEffort {
	res := domain.BestEffort{Op: "set " + key}
	if err := s.backend.Set(ctx, key, value); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("token store write failed")
		res.Err = err
	}
	return res
}
