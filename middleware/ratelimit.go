package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet hands out one token bucket per client IP and forgets IPs that
// have been idle for longer than ttl.
type limiterSet struct {
	mu       sync.Mutex
	r        rate.Limit
	b        int
	ttl      time.Duration
	byIP     map[string]*ipLimiter
	lastSweep time.Time
}

func (s *limiterSet) allow(ip string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) > s.ttl {
		for k, v := range s.byIP {
			if now.Sub(v.lastSeen) > s.ttl {
				delete(s.byIP, k)
			}
		}
		s.lastSweep = now
	}
	il, ok := s.byIP[ip]
	if !ok {
		il = &ipLimiter{limiter: rate.NewLimiter(s.r, s.b)}
		s.byIP[ip] = il
	}
	il.lastSeen = now
	return il.limiter.AllowN(now, 1)
}

// RateLimit provides per-IP token-bucket rate limiting.
// r = requests per second, b = burst size.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	set := &limiterSet{
		r:        r,
		b:        b,
		ttl:      10 * time.Minute,
		byIP:     make(map[string]*ipLimiter),
		lastSweep: time.Now(),
	}
	return func(c *gin.Context) {
		if !set.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
