package httpmiddleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ClientLimiter throttles requests per client IP. Badge punches cluster at
// shift boundaries, so the burst capacity is configured separately from the
// steady per-minute refill rate. In-memory; for multi-instance deployments
// swap to Redis.
type ClientLimiter struct {
	burst   int
	perMin  int
	mu      sync.Mutex
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	tokens   int
	refilled time.Time
}

// NewClientLimiter creates a limiter refilling perMinute tokens with room
// for burst extra requests.
func NewClientLimiter(perMinute, burst int) *ClientLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &ClientLimiter{
		burst:   burst,
		perMin:  perMinute,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

// Middleware returns a gin handler enforcing the per-IP limit.
func (l *ClientLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// Allow takes one token for key, reporting whether the request may proceed.
func (l *ClientLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.clients[key]
	if !ok {
		l.clients[key] = &clientBucket{tokens: l.burst - 1, refilled: now}
		return true
	}

	refill := int(now.Sub(b.refilled).Seconds()) * l.perMin / 60
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
		b.refilled = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}
