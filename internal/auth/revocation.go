package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList records logged-out tokens until they would have
// expired anyway. Entries are keyed by the SHA-256 of the token so
// the raw bearer string is never stored. Redis backs the list when
// a client is available; otherwise a process-local map keeps logout
// working in single-instance deployments.
type RevocationList struct {
	rdb *redis.Client

	mu    sync.Mutex
	local map[string]time.Time
}

func NewRevocationList(rdb *redis.Client) *RevocationList {
	return &RevocationList{rdb: rdb, local: make(map[string]time.Time)}
}

// Revoke marks the token unusable until exp. Idempotent.
func (l *RevocationList) Revoke(ctx context.Context, token string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		// Already expired; the signature check will reject it.
		return nil
	}
	key := revocationKey(token)
	if l.rdb != nil {
		return l.rdb.Set(ctx, key, 1, ttl).Err()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.local[key] = exp
	return nil
}

// IsRevoked reports whether the token has been invalidated.
func (l *RevocationList) IsRevoked(ctx context.Context, token string) (bool, error) {
	key := revocationKey(token)
	if l.rdb != nil {
		n, err := l.rdb.Exists(ctx, key).Result()
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.local[key]
	if ok && time.Now().After(exp) {
		delete(l.local, key)
		return false, nil
	}
	return ok, nil
}

// revocationKey hashes the raw token into the redis key namespace.
func revocationKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "revoked:" + hex.EncodeToString(sum[:])
}
