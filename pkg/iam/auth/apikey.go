package auth

import (
	"strings"

	"github.com/Abraxas-365/hirekit/pkg/config"
	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"golang.org/x/crypto/bcrypt"
)

// APIKeySeparator splits the public prefix from the secret in "<prefix>.<secret>"
const APIKeySeparator = "."

type apiKey struct {
	name    string
	hash    []byte
	ownerID kernel.UserID
	scopes  []string
}

// APIKeyStore verifies service credentials declared in configuration.
// Secrets are never stored, only their bcrypt hash.
type APIKeyStore struct {
	keys map[string]apiKey
}

// NewAPIKeyStore indexes the configured keys by prefix
func NewAPIKeyStore(keys []config.APIKeyConfig) *APIKeyStore {
	store := &APIKeyStore{keys: make(map[string]apiKey, len(keys))}
	for _, k := range keys {
		store.keys[k.Prefix] = apiKey{
			name:    k.Name,
			hash:    []byte(k.Hash),
			ownerID: kernel.UserID(k.OwnerID),
			scopes:  k.Scopes,
		}
	}
	return store
}

// Verify checks a raw "<prefix>.<secret>" key
func (s *APIKeyStore) Verify(raw string) (*AuthContext, error) {
	prefix, secret, ok := strings.Cut(raw, APIKeySeparator)
	if !ok || prefix == "" || secret == "" {
		return nil, ErrInvalidAPIKey().WithDetail("reason", "malformed key")
	}

	key, found := s.keys[prefix]
	if !found {
		return nil, ErrInvalidAPIKey()
	}
	if err := bcrypt.CompareHashAndPassword(key.hash, []byte(secret)); err != nil {
		return nil, ErrInvalidAPIKey()
	}

	owner := key.ownerID
	return &AuthContext{
		UserID:     &owner,
		Scopes:     key.scopes,
		IsAPIKey:   true,
		APIKeyName: key.name,
	}, nil
}

// HashAPIKeySecret produces the hash to put in configuration for a secret
func HashAPIKeySecret(secret string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
