package middleware

import (
	"net/http"
	"sync"
	"time"

	"smiledesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// clientRecord keeps one client's request timestamps inside the trailing
// window. Each record carries its own mutex so concurrent requests from the
// same client serialize without blocking unrelated clients.
type clientRecord struct {
	mu     sync.Mutex
	stamps []time.Time
}

// SlidingWindowLimiter admits up to max requests per client within the
// trailing window. Timestamps older than the window are evicted lazily on
// each lookup; there is no background sweep.
type SlidingWindowLimiter struct {
	mu      sync.RWMutex
	clients map[string]*clientRecord
	window  time.Duration
	max     int
	now     func() time.Time
}

// NewSlidingWindowLimiter creates a limiter admitting max requests per window.
func NewSlidingWindowLimiter(max int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		clients: make(map[string]*clientRecord),
		window:  window,
		max:     max,
		now:     time.Now,
	}
}

func (l *SlidingWindowLimiter) record(clientID string) *clientRecord {
	l.mu.RLock()
	rec, ok := l.clients[clientID]
	l.mu.RUnlock()
	if ok {
		return rec
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok = l.clients[clientID]; ok {
		return rec
	}
	rec = &clientRecord{}
	l.clients[clientID] = rec
	return rec
}

// Admit reports whether a request from clientID is inside quota, recording
// the request timestamp when it is. A rejected request leaves no trace.
func (l *SlidingWindowLimiter) Admit(clientID string) bool {
	now := l.now()
	rec := l.record(clientID)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	cutoff := now.Add(-l.window)
	kept := rec.stamps[:0]
	for _, t := range rec.stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	rec.stamps = kept

	if len(rec.stamps) >= l.max {
		return false
	}
	rec.stamps = append(rec.stamps, now)
	return true
}

// RateLimitMiddleware rejects over-quota requests with 429 before any
// handler side effects run.
func RateLimitMiddleware(limiter *SlidingWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ClientIP(c)
		if !limiter.Admit(ip) {
			utils.GetLogger().Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again in a minute."})
			return
		}
		c.Next()
	}
}
