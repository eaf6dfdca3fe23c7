package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "credentials.sqlite"

// SQLiteStore keeps the credential pair in a key/value table laid out like a
// browser local-storage database.
type SQLiteStore struct {
	path string
}

// NewSQLiteStore creates the ItemTable if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	s := &SQLiteStore{path: path}

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS ItemTable (key TEXT UNIQUE ON CONFLICT REPLACE, value TEXT)`)
	if err != nil {
		return nil, fmt.Errorf("creating item table: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path+"?_pragma=busy_timeout(1000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Credentials, error) {
	db, err := s.open()
	if err != nil {
		return Credentials{}, err
	}
	defer db.Close()

	access, err := getItem(ctx, db, KeyAccessToken)
	if err != nil {
		return Credentials{}, err
	}
	refresh, err := getItem(ctx, db, KeyRefreshToken)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

func getItem(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, "SELECT value FROM ItemTable WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) AccessToken(ctx context.Context) (string, error) {
	db, err := s.open()
	if err != nil {
		return "", err
	}
	defer db.Close()

	return getItem(ctx, db, KeyAccessToken)
}

func (s *SQLiteStore) Save(ctx context.Context, creds Credentials) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt := "INSERT INTO ItemTable (key, value) VALUES (?, ?)"
		if _, err := tx.ExecContext(ctx, stmt, KeyAccessToken, creds.AccessToken); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, stmt, KeyRefreshToken, creds.RefreshToken)
		return err
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM ItemTable WHERE key IN (?, ?)", KeyAccessToken, KeyRefreshToken)
		return err
	})
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("writing credentials: %w", err)
	}
	return tx.Commit()
}
