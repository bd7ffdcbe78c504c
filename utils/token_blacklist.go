package utils

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// The blacklist has two layers: individual tokens revoked by logout, and a
// per-user revocation mark written when an account is deleted so every
// outstanding token for that user dies at once. Redis is preferred; the
// in-memory maps are a single-instance fallback.

type blacklistEntry struct {
	expiresAt time.Time
}

var (
	blacklist    = map[string]blacklistEntry{}
	revokedUsers = map[uint]blacklistEntry{}
	blacklistMu  sync.RWMutex
)

// BlacklistToken stores a token until expiration to support logout semantics.
func BlacklistToken(token string, expiresAt time.Time) {
	if rc := GetRedis(); rc != nil {
		ttl := time.Until(expiresAt)
		if ttl <= 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, "jwt:blacklist:"+token, "1", ttl).Err(); err == nil {
			return
		}
	}
	blacklistMu.Lock()
	blacklist[token] = blacklistEntry{expiresAt: expiresAt}
	blacklistMu.Unlock()
}

// IsTokenBlacklisted checks if a token was revoked before natural expiration.
func IsTokenBlacklisted(token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := rc.Exists(ctx, "jwt:blacklist:"+token).Result()
		if err == nil && n > 0 {
			return true
		}
		// fall through to memory on Redis error; fail-open to avoid lockout
	}
	blacklistMu.RLock()
	entry, ok := blacklist[token]
	blacklistMu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(entry.expiresAt) {
		blacklistMu.Lock()
		delete(blacklist, token)
		blacklistMu.Unlock()
		return false
	}
	return true
}

// RevokeUserSessions invalidates every outstanding token of a user. Called
// after account deletion; best-effort, an already-missing mark is fine.
func RevokeUserSessions(userID uint) error {
	expiresAt := time.Now().Add(TokenLifetime)
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := rc.Set(ctx, revokedUserKey(userID), "1", TokenLifetime).Err()
		if err == nil || err == redis.Nil {
			return nil
		}
		// remember locally as well so the failure is not fatal
	}
	blacklistMu.Lock()
	revokedUsers[userID] = blacklistEntry{expiresAt: expiresAt}
	blacklistMu.Unlock()
	return nil
}

// AreUserSessionsRevoked reports whether the user's sessions were bulk-revoked.
func AreUserSessionsRevoked(userID uint) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := rc.Exists(ctx, revokedUserKey(userID)).Result()
		if err == nil && n > 0 {
			return true
		}
	}
	blacklistMu.RLock()
	entry, ok := revokedUsers[userID]
	blacklistMu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(entry.expiresAt) {
		blacklistMu.Lock()
		delete(revokedUsers, userID)
		blacklistMu.Unlock()
		return false
	}
	return true
}

func revokedUserKey(userID uint) string {
	return "jwt:revoked:user:" + strconv.FormatUint(uint64(userID), 10)
}
