package client

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	sessionBucket    = []byte("session")
	refreshCookieKey = []byte("refresh_cookie")
	refreshExpiryKey = []byte("refresh_expires")
)

// SessionStore persists the refresh cookie between process runs so a user
// who opted into "remember me" can resume without re-entering credentials.
// The access token is never persisted.
type SessionStore struct {
	db *bolt.DB
}

// OpenSessionStore opens or creates the store file.
func OpenSessionStore(path string) (*SessionStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init session store: %w", err)
	}
	return &SessionStore{db: db}, nil
}

// SaveRefreshCookie stores the refresh cookie value and its expiry.
func (s *SessionStore) SaveRefreshCookie(value string, expiresAt time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)
		if err := bucket.Put(refreshCookieKey, []byte(value)); err != nil {
			return err
		}
		return bucket.Put(refreshExpiryKey, []byte(expiresAt.UTC().Format(time.RFC3339)))
	})
}

// LoadRefreshCookie returns the stored cookie if one exists and has not
// expired.
func (s *SessionStore) LoadRefreshCookie() (string, time.Time, bool, error) {
	var (
		value   string
		expires time.Time
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)
		raw := bucket.Get(refreshCookieKey)
		if raw == nil {
			return nil
		}
		value = string(raw)
		if rawExp := bucket.Get(refreshExpiryKey); rawExp != nil {
			parsed, err := time.Parse(time.RFC3339, string(rawExp))
			if err != nil {
				return fmt.Errorf("parse stored expiry: %w", err)
			}
			expires = parsed
		}
		return nil
	})
	if err != nil {
		return "", time.Time{}, false, err
	}
	if value == "" {
		return "", time.Time{}, false, nil
	}
	if !expires.IsZero() && time.Now().After(expires) {
		return "", time.Time{}, false, nil
	}
	return value, expires, true, nil
}

// Clear removes any stored session.
func (s *SessionStore) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)
		if err := bucket.Delete(refreshCookieKey); err != nil {
			return err
		}
		return bucket.Delete(refreshExpiryKey)
	})
}

// Close releases the underlying database.
func (s *SessionStore) Close() error {
	return s.db.Close()
}
