package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type Limiter interface {
	Allow(key string, limit int, window time.Duration) bool
}

// MemoryLimiter is a per-key token bucket. It is used when no Redis is
// configured and only limits within a single process.
type MemoryLimiter struct {
	mu       sync.Mutex
	limiters map[string]*memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const memoryLimiterMaxKeys = 10000

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{limiters: make(map[string]*memoryEntry), now: time.Now}
}

// Allow admits up to limit requests per window for key, refilling evenly.
func (l *MemoryLimiter) Allow(key string, limit int, window time.Duration) bool {
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= memoryLimiterMaxKeys {
			l.evictIdle(now, window)
		}
		entry = &memoryEntry{limiter: rate.NewLimiter(rate.Every(refillInterval(limit, window)), limit)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// refillInterval is the time to earn one token. It is never zero, because
// rate.Every(0) is an unlimited rate.
func refillInterval(limit int, window time.Duration) time.Duration {
	interval := window / time.Duration(limit)
	if interval <= 0 {
		return time.Nanosecond
	}
	return interval
}

func (l *MemoryLimiter) evictIdle(now time.Time, window time.Duration) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > window {
			delete(l.limiters, key)
		}
	}
}

// RateLimit rejects requests over limit per window with 429. An empty key
// or a nil limiter lets the request through.
func RateLimit(limiter Limiter, keyFn func(*gin.Context) string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}
		if !limiter.Allow(key, limit, window) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
				"type":  "RATE_LIMIT",
			})
			return
		}
		c.Next()
	}
}

// ClientIPKey keys a limit by route and client address.
func ClientIPKey(prefix string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		return prefix + ":" + c.ClientIP()
	}
}
