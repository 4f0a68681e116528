package session

import (
	"errors"
	"fmt"
)

// TokenKey is the storage key holding the bearer token.
const TokenKey = "authToken"

// TokenStore holds at most one bearer token across a persistent and a
// transient Storage. The persistent copy wins when both are present.
type TokenStore struct {
	persistent Storage
	transient  Storage
}

func NewTokenStore(persistent, transient Storage) *TokenStore {
	return &TokenStore{
		persistent: persistent,
		transient:  transient,
	}
}

// NewDefaultTokenStore uses the files from DefaultPaths.
func NewDefaultTokenStore() (*TokenStore, error) {
	persistent, transient, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return NewTokenStore(NewFileStorage(persistent), NewFileStorage(transient)), nil
}

// Get returns the stored token. Unreadable storage counts as no token.
func (s *TokenStore) Get() (string, bool) {
	for _, st := range []Storage{s.persistent, s.transient} {
		if tok, ok, err := st.Get(TokenKey); err == nil && ok && tok != "" {
			return tok, true
		}
	}
	return "", false
}

// Set stores token in the persistent storage when persistent is true, in the
// transient one otherwise, and removes it from the other location.
func (s *TokenStore) Set(token string, persistent bool) error {
	target, other := s.transient, s.persistent
	if persistent {
		target, other = s.persistent, s.transient
	}

	if err := target.Set(TokenKey, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if err := other.Remove(TokenKey); err != nil {
		return fmt.Errorf("failed to clear previous token: %w", err)
	}
	return nil
}

// Clear removes the token from both storages.
func (s *TokenStore) Clear() error {
	return errors.Join(
		s.persistent.Remove(TokenKey),
		s.transient.Remove(TokenKey),
	)
}
