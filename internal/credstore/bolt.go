package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketName   = "local_storage"
	boltFileName = "credentials.db"
	lockTimeout  = 1 * time.Second
)

// BoltStore keeps the credential pair in a bbolt file. The file is opened for
// each operation and closed right after, so the exclusive lock is never held
// between calls.
type BoltStore struct {
	path string
}

func NewBoltStore(path string) *BoltStore {
	return &BoltStore{path: path}
}

func (s *BoltStore) Path() string { return s.path }

func (s *BoltStore) open() (*bolt.DB, error) {
	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("opening credential db: %w", err)
	}
	return db, nil
}

func (s *BoltStore) Load(ctx context.Context) (Credentials, error) {
	if err := ctx.Err(); err != nil {
		return Credentials{}, err
	}

	// Not opened read-only: that fails on a file that does not exist yet, and
	// an empty store is the normal first-run state.
	db, err := s.open()
	if err != nil {
		return Credentials{}, err
	}
	defer db.Close()

	var creds Credentials
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		creds.AccessToken = string(b.Get([]byte(KeyAccessToken)))
		creds.RefreshToken = string(b.Get([]byte(KeyRefreshToken)))
		return nil
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("reading credentials: %w", err)
	}
	return creds, nil
}

func (s *BoltStore) AccessToken(ctx context.Context) (string, error) {
	creds, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	return creds.AccessToken, nil
}

func (s *BoltStore) Save(ctx context.Context, creds Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		if err := b.Put([]byte(KeyAccessToken), []byte(creds.AccessToken)); err != nil {
			return err
		}
		return b.Put([]byte(KeyRefreshToken), []byte(creds.RefreshToken))
	})
}

func (s *BoltStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		if err := b.Delete([]byte(KeyAccessToken)); err != nil {
			return err
		}
		return b.Delete([]byte(KeyRefreshToken))
	})
}
