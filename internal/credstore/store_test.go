package credstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suranjanamuahaha/BlinkEd/internal/config"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqliteStore, err := NewSQLiteStore(filepath.Join(dir, sqliteFileName))
	require.NoError(t, err)

	return map[string]Store{
		"bolt":   NewBoltStore(filepath.Join(dir, boltFileName)),
		"sqlite": sqliteStore,
		"memory": NewMemoryStore(Credentials{}),
	}
}

func TestStore_EmptyOnFirstUse(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			creds, err := s.Load(ctx)
			require.NoError(t, err)
			assert.True(t, creds.Empty())

			tok, err := s.AccessToken(ctx)
			require.NoError(t, err)
			assert.Empty(t, tok)
		})
	}
}

func TestStore_SaveLoadClear(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := Credentials{AccessToken: "acc-1", RefreshToken: "ref-1"}

			require.NoError(t, s.Save(ctx, want))

			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			tok, err := s.AccessToken(ctx)
			require.NoError(t, err)
			assert.Equal(t, "acc-1", tok)

			// Overwrite replaces both keys.
			require.NoError(t, s.Save(ctx, Credentials{AccessToken: "acc-2", RefreshToken: "ref-2"}))
			got, err = s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, Credentials{AccessToken: "acc-2", RefreshToken: "ref-2"}, got)

			require.NoError(t, s.Clear(ctx))
			got, err = s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, Credentials{}, got)

			// Clearing an empty store is fine.
			require.NoError(t, s.Clear(ctx))
		})
	}
}

func TestStore_SeparateInstancesShareFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	a := NewBoltStore(filepath.Join(dir, boltFileName))
	b := NewBoltStore(filepath.Join(dir, boltFileName))

	require.NoError(t, a.Save(ctx, Credentials{AccessToken: "shared", RefreshToken: "r"}))
	tok, err := b.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shared", tok)

	require.NoError(t, b.Clear(ctx))
	tok, err = a.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok, "last write wins across instances")
}

func TestOpen_SelectsBackend(t *testing.T) {
	for _, backend := range []string{config.BackendBolt, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := &config.Config{DataDir: filepath.Join(t.TempDir(), "data")}
			cfg.Storage.Backend = backend

			s, err := Open(cfg)
			require.NoError(t, err)
			assert.DirExists(t, cfg.DataDir)

			switch backend {
			case config.BackendBolt:
				assert.IsType(t, &BoltStore{}, s)
			case config.BackendSQLite:
				assert.IsType(t, &SQLiteStore{}, s)
			}
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir()}
	cfg.Storage.Backend = "etcd"

	_, err := Open(cfg)
	require.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("any-key-the-client-never-knows"))
	require.NoError(t, err)

	got, ok := TokenExpiry(signed)
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = TokenExpiry("")
	assert.False(t, ok)

	_, ok = TokenExpiry("not-a-jwt")
	assert.False(t, ok)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).
		SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = TokenExpiry(noExp)
	assert.False(t, ok)
}
