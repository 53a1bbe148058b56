// Package middleware provides the gin middleware stack for the papergraph API.
package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/papergraph/internal/httputil"
)

// maxBuckets is the maximum number of tracked IPs to prevent memory exhaustion.
const maxBuckets = 100_000

// RateLimiter is a per-IP token bucket. Routes cost one token unless
// configured otherwise with Cost. Exempt routes bypass it entirely.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   float64
	exempt  map[string]bool
	cost    map[string]float64
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// take refills b for the time elapsed since the last call and spends n
// tokens if available. On refusal it returns how long until n tokens
// will be available.
func (rl *RateLimiter) take(b *bucket, n float64, now time.Time) (bool, time.Duration) {
	b.tokens = math.Min(rl.burst, b.tokens+now.Sub(b.lastFill).Seconds()*rl.rate)
	b.lastFill = now

	if b.tokens >= n {
		b.tokens -= n
		return true, 0
	}

	wait := (n - b.tokens) / rl.rate

	return false, time.Duration(wait * float64(time.Second))
}

// NewRateLimiter creates a RateLimiter with the given requests per second and burst size.
// It starts a background goroutine to evict stale buckets, which stops when ctx is cancelled.
func NewRateLimiter(ctx context.Context, ratePerSec, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    float64(max(ratePerSec, 1)),
		burst:   float64(max(burst, 1)),
		exempt:  map[string]bool{},
		cost:    map[string]float64{},
	}
	go rl.startCleanup(ctx)

	return rl
}

func (rl *RateLimiter) startCleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	const maxAge = 10 * time.Minute

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, b := range rl.buckets {
				if now.Sub(b.lastFill) > maxAge {
					delete(rl.buckets, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Exempt excludes the given route patterns from limiting. It must be
// called before Handler is installed.
func (rl *RateLimiter) Exempt(patterns ...string) *RateLimiter {
	for _, p := range patterns {
		rl.exempt[p] = true
	}

	return rl
}

// Cost charges n tokens per request to pattern instead of one. n is capped
// at the burst size so the route stays reachable.
func (rl *RateLimiter) Cost(pattern string, n int) *RateLimiter {
	rl.cost[pattern] = math.Min(float64(max(n, 1)), rl.burst)

	return rl
}

// Handler returns Gin middleware that applies rate limiting per client IP.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if rl.exempt[route] {
			c.Next()
			return
		}

		n, ok := rl.cost[route]
		if !ok {
			n = 1
		}

		// SetTrustedProxies(nil) in the router keeps ClientIP from trusting
		// X-Forwarded-For.
		ip := c.ClientIP()
		now := time.Now()

		rl.mu.Lock()
		b, ok := rl.buckets[ip]
		if !ok {
			if len(rl.buckets) >= maxBuckets {
				rl.mu.Unlock()
				httputil.RespondError(c, http.StatusTooManyRequests, "rate_limited", "too many clients")

				return
			}

			b = &bucket{tokens: rl.burst, lastFill: now}
			rl.buckets[ip] = b
		}

		allowed, wait := rl.take(b, n, now)
		rl.mu.Unlock()

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			httputil.RespondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")

			return
		}

		c.Next()
	}
}
