package utils

import (
	"context"
	"encoding/json"
	"time"
)

// Post list pages are the only cached reads. Entries are short-lived and any
// write that could change a page drops the whole prefix, so staleness is
// bounded by the TTL even if an invalidation is missed.

const (
	cacheOpTimeout  = 2 * time.Second
	defaultCacheTTL = 5 * time.Minute
)

// CacheFetch returns the cached payload for key, or false on miss or when
// redis is unavailable. Callers treat any false as a miss and rebuild.
func CacheFetch(key string) ([]byte, bool) {
	rc := GetRedis()
	if rc == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	b, err := rc.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// CacheStoreJSON marshals v and stores it under key. Failures are logged and
// swallowed; the cache is an optimization, never a dependency.
func CacheStoreJSON(key string, v interface{}, ttl time.Duration) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	if err := rc.Set(ctx, key, b, ttl).Err(); err != nil && Sugar != nil {
		Sugar.Warnf("cache store failed key=%s err=%v", key, err)
	}
}

// CacheDropPrefix removes every key under prefix via SCAN and pipelined DEL.
// Rounds are bounded; anything left behind expires on its own TTL.
func CacheDropPrefix(prefix string) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var cursor uint64
	for round := 0; round < 10; round++ {
		keys, next, err := rc.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			pipe := rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
