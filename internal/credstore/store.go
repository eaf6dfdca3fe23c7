// Package credstore persists the access/refresh credential pair on disk.
//
// Both tokens are always written together and cleared together. Every read
// goes to the backing storage so a change made by another process is seen on
// the next call.
package credstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/suranjanamuahaha/BlinkEd/internal/config"
)

// Fixed storage keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// ErrLocked is returned when another process holds the storage file lock.
var ErrLocked = errors.New("credential store is locked by another process")

// Credentials is the persisted token pair.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether no access token is present.
func (c Credentials) Empty() bool {
	return c.AccessToken == ""
}

// Store is durable client-side storage for the credential pair.
type Store interface {
	// Load returns the persisted pair. Missing keys are empty strings.
	Load(ctx context.Context) (Credentials, error)
	// AccessToken returns the persisted access token, or "" when none.
	AccessToken(ctx context.Context) (string, error)
	// Save writes both tokens in a single transaction.
	Save(ctx context.Context, creds Credentials) error
	// Clear removes both tokens in a single transaction.
	Clear(ctx context.Context) error
	// Path is the backing file, or "" for in-memory stores.
	Path() string
}

// Open returns the store selected by cfg.Storage.Backend inside cfg.DataDir.
func Open(cfg *config.Config) (Store, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("credstore: create data dir: %w", err)
	}

	switch cfg.Storage.Backend {
	case config.BackendBolt:
		return NewBoltStore(filepath.Join(cfg.DataDir, boltFileName)), nil
	case config.BackendSQLite:
		return NewSQLiteStore(filepath.Join(cfg.DataDir, sqliteFileName))
	default:
		return nil, fmt.Errorf("credstore: unknown backend %q", cfg.Storage.Backend)
	}
}
