package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedLimiter keeps an independent token bucket per key. Keys that stay
// idle past the TTL are dropped so the map does not grow without bound.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	ttl      time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter creates a limiter allowing the given events per second
// with the given burst for each distinct key.
func NewKeyedLimiter(limit rate.Limit, burst int, ttl time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		limiters: make(map[string]*entry),
		limit:    limit,
		burst:    burst,
		ttl:      ttl,
	}
}

// Allow reports whether an event for the key may proceed now.
func (k *KeyedLimiter) Allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := time.Now()
	e, ok := k.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.limiters[key] = e
	}
	e.lastSeen = now

	if len(k.limiters) > 1024 {
		k.evictLocked(now)
	}
	return e.limiter.Allow()
}

func (k *KeyedLimiter) evictLocked(now time.Time) {
	for key, e := range k.limiters {
		if now.Sub(e.lastSeen) > k.ttl {
			delete(k.limiters, key)
		}
	}
}
