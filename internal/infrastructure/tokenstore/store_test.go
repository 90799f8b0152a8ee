package tokenstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/core/ports"
)

type brokenBackend struct{ err error }

func (b brokenBackend) Get(context.Context, string) (string, bool, error) { return "", false, b.err }
func (b brokenBackend) Set(context.Context, string, string) error         { return b.err }
func (b brokenBackend) Delete(context.Context, ...string) error           { return b.err }
func (b brokenBackend) Ping(context.Context) error                        { return b.err }

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, backend := range map[string]ports.KeyValueStore{
		"memory": NewMemory(),
		"file":   NewFile(filepath.Join(t.TempDir(), "creds", credentialsFileName)),
	} {
		t.Run(name, func(t *testing.T) {
			s := New(backend, zerolog.Nop())

			assert.Empty(t, s.Access(ctx))
			assert.Empty(t, s.Refresh(ctx))

			require.True(t, s.Save(ctx, domain.TokenPair{Access: "x", Refresh: "y"}).OK())
			assert.Equal(t, "x", s.Access(ctx))
			assert.Equal(t, "y", s.Refresh(ctx))

			require.True(t, s.SetAccess(ctx, "x2").OK())
			assert.Equal(t, "x2", s.Access(ctx))
			assert.Equal(t, "y", s.Refresh(ctx))

			require.True(t, s.Save(ctx, domain.TokenPair{Access: "x3"}).OK())
			assert.Equal(t, "y", s.Refresh(ctx), "empty refresh keeps the stored one")

			require.True(t, s.Clear(ctx).OK())
			assert.Empty(t, s.Access(ctx))
			assert.Empty(t, s.Refresh(ctx))
		})
	}
}

func TestStore_BackendFailuresAreBestEffort(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")
	s := New(brokenBackend{err: boom}, zerolog.Nop())

	assert.Empty(t, s.Access(ctx))
	assert.Empty(t, s.Refresh(ctx))

	res := s.Save(ctx, domain.TokenPair{Access: "a", Refresh: "r"})
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, boom)

	res = s.Clear(ctx)
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, boom)
}

func TestFile_PermissionsAndRemoval(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), credentialsFileName)
	f := NewFile(path)

	require.NoError(t, f.Set(ctx, KeyAccess, "tok"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, f.Delete(ctx, KeyAccess, KeyRefresh))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty credentials file is removed")
}

func TestFile_CorruptFileReportsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), credentialsFileName)
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	s := New(NewFile(path), zerolog.Nop())
	assert.Empty(t, s.Access(context.Background()))
	assert.False(t, s.SetAccess(context.Background(), "x").OK())
}

func TestStore_RenewOnlyWhileRefreshIsCurrent(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemory(), zerolog.Nop())
	s.Save(ctx, domain.TokenPair{Access: "a1", Refresh: "r1"})

	saved, res := s.Renew(ctx, "r1", domain.TokenPair{Access: "a2"})
	require.True(t, saved)
	require.True(t, res.OK())
	assert.Equal(t, "a2", s.Access(ctx))
	assert.Equal(t, "r1", s.Refresh(ctx))

	s.Save(ctx, domain.TokenPair{Access: "b1", Refresh: "other"})
	saved, _ = s.Renew(ctx, "r1", domain.TokenPair{Access: "a3", Refresh: "r3"})
	assert.False(t, saved, "pair replaced by a new login")
	assert.Equal(t, "b1", s.Access(ctx))
	assert.Equal(t, "other", s.Refresh(ctx))

	s.Clear(ctx)
	saved, _ = s.Renew(ctx, "other", domain.TokenPair{Access: "a4"})
	assert.False(t, saved, "pair cleared by logout")
	assert.Empty(t, s.Access(ctx))
	assert.Empty(t, s.Refresh(ctx))

	saved, _ = s.Renew(ctx, "", domain.TokenPair{Access: "a5"})
	assert.False(t, saved)
	assert.Empty(t, s.Access(ctx))
}
