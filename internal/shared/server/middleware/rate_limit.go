package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	DefaultRateLimitWindow = 15 * time.Minute
	DefaultRateLimitMax    = 100
)

// WindowLimiter counts requests per identity in fixed windows. A window starts
// with the first request after the previous one expired.
type WindowLimiter struct {
	mu          sync.Mutex
	counts      map[string]int
	windowStart map[string]time.Time
	window      time.Duration
	max         int
	now         func() time.Time
	lastPrune   time.Time
}

// NewWindowLimiter builds a limiter; zero values fall back to 100 requests per 15 minutes.
func NewWindowLimiter(window time.Duration, max int, now func() time.Time) *WindowLimiter {
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	if max <= 0 {
		max = DefaultRateLimitMax
	}
	if now == nil {
		now = time.Now
	}
	return &WindowLimiter{
		counts:      make(map[string]int),
		windowStart: make(map[string]time.Time),
		window:      window,
		max:         max,
		now:         now,
	}
}

// Allow records a request for id and reports whether it fits in the current
// window. When it does not, the second value is the time until the window resets.
func (l *WindowLimiter) Allow(id string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)

	start, ok := l.windowStart[id]
	if !ok || now.Sub(start) >= l.window {
		l.windowStart[id] = now
		l.counts[id] = 1
		return true, 0
	}
	if l.counts[id] >= l.max {
		return false, start.Add(l.window).Sub(now)
	}
	l.counts[id]++
	return true, 0
}

// prune drops expired entries at most once per window. Caller holds mu.
func (l *WindowLimiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < l.window {
		return
	}
	l.lastPrune = now
	for id, start := range l.windowStart {
		if now.Sub(start) >= l.window {
			delete(l.windowStart, id)
			delete(l.counts, id)
		}
	}
}

// Len reports the number of tracked identities.
func (l *WindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counts)
}

// RateLimit rejects requests over the limiter's budget with 429.
// Identity comes from the identity middleware, falling back to the client IP.
func RateLimit(limiter *WindowLimiter) gin.HandlerFunc {
	if limiter == nil {
		limiter = NewWindowLimiter(0, 0, nil)
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		principal := strings.TrimSpace(UserIDFromContext(c))
		if principal == "" {
			principal = strings.TrimSpace(c.ClientIP())
		}
		allowed, retryAfter := limiter.Allow(principal)
		if allowed {
			c.Next()
			return
		}
		retryAfterMs := int(retryAfter / time.Millisecond)
		if retryAfterMs <= 0 {
			retryAfterMs = 1000
		}
		retryAfterSeconds := int(math.Ceil(float64(retryAfterMs) / 1000.0))
		if retryAfterSeconds <= 0 {
			retryAfterSeconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":        "rate_limited",
			"retryAfterMs": retryAfterMs,
		})
	}
}
