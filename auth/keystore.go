package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryKeyStore holds keys in process memory.
type MemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[string]*APIKey
}

// NewMemoryKeyStore returns an empty store.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[string]*APIKey)}
}

// LookupKey implements KeyStore.
func (s *MemoryKeyStore) LookupKey(_ context.Context, hash string) (*APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k, ok := s.keys[hash]; ok {
		return cloneKey(k), nil
	}
	return nil, nil
}

// Put stores a copy of key, replacing any key with the same hash.
func (s *MemoryKeyStore) Put(key *APIKey) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.Hash] = cloneKey(key)
	return nil
}

// Delete removes the key with the given hash.
func (s *MemoryKeyStore) Delete(hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, hash)
}

// DefaultKeyPrefix namespaces API key records in Redis.
const DefaultKeyPrefix = "healthops:apikey:"

// RedisKeyStore keeps keys in Redis as JSON under prefix+hash, so keys can
// be rotated without restarting the server. A key with an expiry is stored
// with a matching TTL.
type RedisKeyStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisKeyStore returns a store using client. An empty prefix selects
// DefaultKeyPrefix.
func NewRedisKeyStore(client redis.UniversalClient, prefix string) *RedisKeyStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisKeyStore{client: client, prefix: prefix}
}

// LookupKey implements KeyStore.
func (s *RedisKeyStore) LookupKey(ctx context.Context, hash string) (*APIKey, error) {
	raw, err := s.client.Get(ctx, s.prefix+hash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var key APIKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("decode api key %s: %w", hash, err)
	}
	return &key, nil
}

// Put writes key. An already expired key is not stored.
func (s *RedisKeyStore) Put(ctx context.Context, key *APIKey) error {
	if err := checkKey(key); err != nil {
		return err
	}

	var ttl time.Duration
	if !key.ExpiresAt.IsZero() {
		ttl = time.Until(key.ExpiresAt)
		if ttl <= 0 {
			return fmt.Errorf("%w: api key %s has expired", ErrInvalidCredentials, key.ID)
		}
	}

	raw, err := json.Marshal(key)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key.Hash, raw, ttl).Err()
}

// Delete removes the key with the given hash.
func (s *RedisKeyStore) Delete(ctx context.Context, hash string) error {
	return s.client.Del(ctx, s.prefix+hash).Err()
}

func checkKey(key *APIKey) error {
	if key == nil || key.Hash == "" {
		return fmt.Errorf("%w: api key hash is required", ErrInvalidCredentials)
	}
	return nil
}

var (
	_ KeyStore = (*MemoryKeyStore)(nil)
	_ KeyStore = (*RedisKeyStore)(nil)
)
