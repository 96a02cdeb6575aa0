package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Arpita030/deals-App/backend/services/common/auth"
	apperrors "github.com/Arpita030/deals-App/backend/services/common/errors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SecurityHeaders sets response headers for a JSON-only API.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}

// ClientKey identifies the caller for rate limiting: the token email once
// RequireAuth has run, the client IP otherwise.
func ClientKey(c *gin.Context) string {
	if email := auth.Email(c); email != "" {
		return "user:" + email
	}
	return "ip:" + c.ClientIP()
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key and forgets keys idle for ttl.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

func NewRateLimiter(limit rate.Limit, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Allow takes one token from key's bucket. Idle buckets are pruned on the way.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		if len(rl.buckets) > 0 {
			rl.prune(now)
		}
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) prune(now time.Time) {
	for k, b := range rl.buckets {
		if now.Sub(b.lastSeen) > rl.ttl {
			delete(rl.buckets, k)
		}
	}
}

// Len reports how many keys are currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// RateLimitMiddleware allows perMinute requests per ClientKey with the given
// burst and answers 429 with Retry-After beyond that.
func RateLimitMiddleware(perMinute, burst int) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 60
	}
	interval := time.Minute / time.Duration(perMinute)
	limiter := NewRateLimiter(rate.Every(interval), burst, 10*time.Minute)
	retryAfter := strconv.Itoa(int(interval.Seconds()) + 1)

	return func(c *gin.Context) {
		if limiter.Allow(ClientKey(c)) {
			c.Next()
			return
		}
		c.Header("Retry-After", retryAfter)
		apperrors.Respond(c, apperrors.New(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil))
	}
}
