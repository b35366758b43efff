package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"strings"
	"time"
)

// APIKey is a stored key record. Only the SHA-256 of the key is kept.
type APIKey struct {
	ID        string            `json:"id"`
	Hash      string            `json:"hash"`
	Principal string            `json:"principal"`
	Roles     []string          `json:"roles,omitempty"`
	ExpiresAt time.Time         `json:"expires_at,omitzero"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// Expired reports whether the key has an expiry that has passed.
func (k *APIKey) Expired(now time.Time) bool {
	return !k.ExpiresAt.IsZero() && now.After(k.ExpiresAt)
}

// KeyStore looks up API keys by hash.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: an unknown hash is (nil, nil); errors mean the store itself failed.
type KeyStore interface {
	LookupKey(ctx context.Context, hash string) (*APIKey, error)
}

// HashAPIKey returns the hex SHA-256 of key, the form KeyStore lookups use.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// APIKeyConfig configures NewAPIKeyAuthenticator.
type APIKeyConfig struct {
	// HeaderName carries the key.
	// Default: "X-API-Key"
	HeaderName string
}

// APIKeyAuthenticator accepts callers presenting a key found in a KeyStore.
type APIKeyAuthenticator struct {
	header string
	store  KeyStore
	now    func() time.Time
}

// NewAPIKeyAuthenticator returns an authenticator backed by store.
func NewAPIKeyAuthenticator(cfg APIKeyConfig, store KeyStore) *APIKeyAuthenticator {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-API-Key"
	}
	return &APIKeyAuthenticator{header: cfg.HeaderName, store: store, now: time.Now}
}

// Name returns "api_key".
func (a *APIKeyAuthenticator) Name() string { return string(AuthMethodAPIKey) }

// Supports reports whether the key header is present.
func (a *APIKeyAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	return req.GetHeader(a.header) != ""
}

// Authenticate resolves the presented key. Store failures are returned as
// errors; unknown, blank or expired keys are failed results.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	presented := strings.TrimSpace(req.GetHeader(a.header))
	if presented == "" {
		return AuthFailure(ErrMissingCredentials, AuthMethodAPIKey), nil
	}

	key, err := a.store.LookupKey(ctx, HashAPIKey(presented))
	switch {
	case err != nil:
		return nil, fmt.Errorf("auth: api key lookup: %w", err)
	case key == nil:
		return AuthFailure(ErrInvalidCredentials, AuthMethodAPIKey), nil
	case key.Expired(a.now()):
		return AuthFailure(ErrTokenExpired, AuthMethodAPIKey), nil
	}

	claims := make(map[string]any, len(key.Labels)+1)
	for k, v := range key.Labels {
		claims[k] = v
	}
	claims["key_id"] = key.ID

	return AuthSuccess(&Identity{
		Principal: key.Principal,
		Roles:     key.Roles,
		Method:    AuthMethodAPIKey,
		ExpiresAt: key.ExpiresAt,
		Claims:    claims,
	}), nil
}

// KeyStores consults each store in order and returns the first match.
func KeyStores(stores ...KeyStore) KeyStore {
	return keyStores(stores)
}

type keyStores []KeyStore

func (s keyStores) LookupKey(ctx context.Context, hash string) (*APIKey, error) {
	for _, store := range s {
		key, err := store.LookupKey(ctx, hash)
		if err != nil || key != nil {
			return key, err
		}
	}
	return nil, nil
}

func cloneKey(k *APIKey) *APIKey {
	c := *k
	c.Roles = append([]string(nil), k.Roles...)
	c.Labels = maps.Clone(k.Labels)
	return &c
}

var _ Authenticator = (*APIKeyAuthenticator)(nil)
