// Package session persists the CLI client's auth session (token pair and
// expiry) in a local bbolt file.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// ErrNotFound indicates that no session is stored
var ErrNotFound = errors.New("session not found")

var (
	bucketSession = []byte("session")
	sessionKey    = []byte("current")
)

// Session is the locally stored auth state
type Session struct {
	Username     string    `json:"username"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"` // access token expiry
}

// Store keeps the session in a bbolt database file
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the session database at path.
// The file is created with 0600: it holds live tokens.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the session, replacing any previous one
func (s *Store) Save(ctx context.Context, session *Session) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		if err := tx.Bucket(bucketSession).Put(sessionKey, data); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		return nil
	})
}

// Get retrieves the stored session.
// Returns ErrNotFound when no session is stored.
func (s *Store) Get(ctx context.Context) (*Session, error) {
	var session *Session

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSession).Get(sessionKey)
		if data == nil {
			return ErrNotFound
		}

		session = &Session{}
		if err := json.Unmarshal(data, session); err != nil {
			return fmt.Errorf("failed to unmarshal session: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Delete removes the stored session. Deleting a missing session is fine.
func (s *Store) Delete(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSession).Delete(sessionKey)
	})
}
