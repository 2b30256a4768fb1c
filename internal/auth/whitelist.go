package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrDuplicateToken is returned when inserting a token value that is already
// whitelisted. Collisions are practically impossible for signed tokens but
// must still fail the surrounding login.
var ErrDuplicateToken = errors.New("token already whitelisted")

const whitelistKeyPrefix = "whitelist:token:"

// WhitelistStore tracks the set of currently-honored token values. A token
// missing from the store is unusable no matter what its own claims say.
type WhitelistStore interface {
	Insert(ctx context.Context, token string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
	Remove(ctx context.Context, token string) error
}

// RedisWhitelist is the Redis-backed store shared across instances. Entries
// carry a TTL equal to the token lifetime, so the whitelist never outlives
// the tokens it vouches for.
type RedisWhitelist struct {
	client *redis.Client
}

// NewRedisWhitelist constructs a Redis-backed whitelist.
func NewRedisWhitelist(client *redis.Client) *RedisWhitelist {
	return &RedisWhitelist{client: client}
}

// Insert registers a freshly issued token. SET NX keeps the operation atomic
// and surfaces duplicates.
func (w *RedisWhitelist) Insert(ctx context.Context, token string, ttl time.Duration) error {
	ok, err := w.client.SetNX(ctx, whitelistKeyPrefix+token, "1", ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicateToken
	}
	return nil
}

// Exists reports whitelist membership for the raw token value.
func (w *RedisWhitelist) Exists(ctx context.Context, token string) (bool, error) {
	n, err := w.client.Exists(ctx, whitelistKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Remove revokes the token immediately.
func (w *RedisWhitelist) Remove(ctx context.Context, token string) error {
	return w.client.Del(ctx, whitelistKeyPrefix+token).Err()
}

// MemoryWhitelist is an in-process store for tests and single-node setups.
type MemoryWhitelist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewMemoryWhitelist constructs an empty in-memory whitelist.
func NewMemoryWhitelist() *MemoryWhitelist {
	return &MemoryWhitelist{entries: make(map[string]time.Time)}
}

// Insert registers the token, expiring it after ttl.
func (w *MemoryWhitelist) Insert(_ context.Context, token string, ttl time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if exp, ok := w.entries[token]; ok && time.Now().Before(exp) {
		return ErrDuplicateToken
	}
	w.entries[token] = time.Now().Add(ttl)
	return nil
}

// Exists reports membership, treating lapsed entries as absent.
func (w *MemoryWhitelist) Exists(_ context.Context, token string) (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	exp, ok := w.entries[token]
	if !ok {
		return false, nil
	}
	return time.Now().Before(exp), nil
}

// Remove deletes the entry.
func (w *MemoryWhitelist) Remove(_ context.Context, token string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entries, token)
	return nil
}
