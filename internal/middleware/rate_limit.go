// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP. Authenticated callers
// are still keyed by IP: ledger writes are cheap to retry and the limiter
// exists to protect the database, not to meter accounts.
type RateLimiter struct {
	mtx     sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	maxIdle time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
		maxIdle: 3 * time.Minute,
	}
	go rl.evictIdle()
	return rl
}

func (rl *RateLimiter) evictIdle() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.mtx.Lock()
		for ip, b := range rl.buckets {
			if time.Since(b.lastSeen) > rl.maxIdle {
				delete(rl.buckets, ip)
			}
		}
		rl.mtx.Unlock()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mtx.Lock()
	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	rl.mtx.Unlock()

	return b.limiter.Allow()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

var (
	generalLimiter = NewRateLimiter(rate.Every(time.Second), 10) // 10 requests per second
	authLimiter    = NewRateLimiter(rate.Every(time.Minute), 5)  // 5 auth requests per minute
	writeLimiter   = NewRateLimiter(rate.Every(time.Second), 5)  // 5 ledger writes per second
)

func GeneralRateLimit() gin.HandlerFunc {
	return generalLimiter.Middleware()
}

func AuthRateLimit() gin.HandlerFunc {
	return authLimiter.Middleware()
}

// WriteRateLimit throttles ledger-mutating endpoints.
func WriteRateLimit() gin.HandlerFunc {
	return writeLimiter.Middleware()
}
