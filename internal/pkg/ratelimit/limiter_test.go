package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestKeyedLimiter_BurstThenBlocked(t *testing.T) {
	// Effectively no refill within the test
	limiter := NewKeyedLimiter(rate.Limit(0.001), 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("1234567890"), "request %d should pass", i+1)
	}
	assert.False(t, limiter.Allow("1234567890"))
}

func TestKeyedLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewKeyedLimiter(rate.Limit(0.001), 1, time.Minute)

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))
}

func TestKeyedLimiter_Refills(t *testing.T) {
	limiter := NewKeyedLimiter(rate.Limit(100), 1, time.Minute)

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	time.Sleep(20 * time.Millisecond)
	assert.True(t, limiter.Allow("a"))
}

func TestKeyedLimiter_EvictsIdleKeys(t *testing.T) {
	limiter := NewKeyedLimiter(rate.Limit(0.001), 1, time.Nanosecond)

	for i := 0; i < 1025; i++ {
		limiter.Allow(fmt.Sprintf("key-%d", i))
	}
	// Idle entries past the TTL were dropped during the insert above
	limiter.mu.Lock()
	size := len(limiter.limiters)
	limiter.mu.Unlock()
	assert.Less(t, size, 1025)
}
