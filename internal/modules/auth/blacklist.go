// README: Revocation set keyed by raw token string.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records tokens revoked at logout. A token present in the
// set is rejected regardless of its remaining cryptographic validity.
type Blacklist interface {
	// Revoke is idempotent; revoking an already revoked token is a
	// no-op. ttl bounds how long the entry must be kept (the token's
	// remaining lifetime — afterwards expiry rejects it anyway).
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

type MemoryBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{tokens: make(map[string]time.Time)}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, token string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = time.Now().Add(ttl)
	return nil
}

func (b *MemoryBlacklist) Contains(_ context.Context, token string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.tokens[token]
	return ok, nil
}

// RedisBlacklist stores revocations as self-expiring keys so the set
// never needs compaction.
type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func revokedKey(token string) string { return "revoked:" + token }

func (b *RedisBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return b.client.Set(ctx, revokedKey(token), "1", ttl).Err()
}

func (b *RedisBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, revokedKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
