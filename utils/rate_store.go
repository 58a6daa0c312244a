package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// In-memory fallback for fixed-window counters (single-instance only).
type windowEntry struct {
	count    int
	resetsAt time.Time
}

var (
	windowStore   = map[string]windowEntry{}
	windowStoreMu sync.Mutex
)

func abuseKey(scope, id, bucket string) string {
	return "abuse:" + scope + ":" + id + ":" + bucket
}

// FixedWindowAllow counts one attempt for (scope, id) inside the current fixed
// window and reports whether the attempt stays under limit. Prefers Redis so
// the limit holds across processes; on Redis failure it falls back to a
// process-local table and, failing that, fails open.
func FixedWindowAllow(scope, id string, limit int, window time.Duration) bool {
	if limit <= 0 || window <= 0 {
		return true
	}
	bucket := time.Now().Truncate(window).Format("20060102150405")
	key := abuseKey(scope, id, bucket)

	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		n, err := rc.Incr(ctx, key).Result()
		if err == nil {
			_ = rc.Expire(ctx, key, window).Err()
			return n <= int64(limit)
		}
		if err != redis.Nil && Sugar != nil {
			Sugar.Debugf("rate window incr failed key=%s err=%v", key, err)
		}
	}

	windowStoreMu.Lock()
	defer windowStoreMu.Unlock()
	now := time.Now()
	entry, ok := windowStore[key]
	if !ok || now.After(entry.resetsAt) {
		// Sweep stale buckets while holding the lock; the table stays tiny.
		for k, e := range windowStore {
			if now.After(e.resetsAt) {
				delete(windowStore, k)
			}
		}
		windowStore[key] = windowEntry{count: 1, resetsAt: now.Add(window)}
		return true
	}
	entry.count++
	windowStore[key] = entry
	return entry.count <= limit
}
