package mw

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ClientRateLimiter keeps one token bucket per client. Idle buckets expire.
type ClientRateLimiter struct {
	limiters *cache.Cache
	r        rate.Limit
	b        int
}

// NewClientRateLimiter creates a limiter allowing r requests per second with
// burst b for each client.
func NewClientRateLimiter(r rate.Limit, b int) *ClientRateLimiter {
	return &ClientRateLimiter{
		limiters: cache.New(10*time.Minute, 20*time.Minute),
		r:        r,
		b:        b,
	}
}

// GetLimiter returns the bucket for key, creating it on first use.
func (l *ClientRateLimiter) GetLimiter(key string) *rate.Limiter {
	if v, found := l.limiters.Get(key); found {
		l.limiters.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(l.r, l.b)
	// Add fails when another request created the bucket first.
	if err := l.limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
		if v, found := l.limiters.Get(key); found {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// RateLimiter is a middleware for per-client rate limiting. Clients are told
// apart by IP; the actor header is caller supplied and never picks a bucket.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewClientRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
