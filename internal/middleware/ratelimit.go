package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/hydration/backend/internal/apierror"
	"github.com/JonnyWalker81/hydration/backend/internal/logger"
)

// RateLimiter counts requests per client IP in fixed windows
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	name    string
	now     func() time.Time
}

type window struct {
	start time.Time
	count int
}

// NewRateLimiter creates a limiter allowing limit requests per window for each
// client. name only labels log lines.
func NewRateLimiter(limit int, every time.Duration, name string) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  every,
		name:    name,
		now:     time.Now,
	}

	go rl.sweep()

	logger.Default().Debug("rate limiter initialized",
		logger.String("name", name),
		logger.Int("limit", limit),
		logger.Duration("window", every),
	)
	return rl
}

// sweep drops clients whose window ended more than one window ago
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := rl.now().Add(-2 * rl.window)
		dropped := 0
		for ip, w := range rl.clients {
			if w.start.Before(cutoff) {
				delete(rl.clients, ip)
				dropped++
			}
		}
		rl.mu.Unlock()

		if dropped > 0 {
			logger.Default().Debug("rate limiter swept idle clients",
				logger.String("name", rl.name),
				logger.Int("dropped", dropped),
			)
		}
	}
}

// isAllowed records a request from ip and reports whether it fits the
// current window, along with the count so far.
func (rl *RateLimiter) isAllowed(ip string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[ip]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.clients[ip] = &window{start: now, count: 1}
		return true, 1
	}

	w.count++
	return w.count <= rl.limit, w.count
}

// retryAfter is the whole seconds until ip's window ends
func (rl *RateLimiter) retryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[ip]
	if !ok {
		return 0
	}
	left := w.start.Add(rl.window).Sub(rl.now())
	return int(math.Max(1, math.Ceil(left.Seconds())))
}

// RateLimit allows requests per window for each client IP
func RateLimit(requests int, every time.Duration) gin.HandlerFunc {
	return rateLimitMiddleware(NewRateLimiter(requests, every, "api"))
}

func rateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	limit := strconv.Itoa(limiter.limit)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed, count := limiter.isAllowed(ip)
		c.Header("X-RateLimit-Limit", limit)

		if !allowed {
			logger.Ctx(c.Request.Context()).Warn("rate limit exceeded",
				logger.String("limiter", limiter.name),
				logger.String("client_ip", ip),
				logger.Int("request_count", count),
			)
			c.Header("X-RateLimit-Remaining", "0")
			apierror.WriteProblem(c, apierror.NewRateLimitError(apierror.GetRequestID(c), limiter.retryAfter(ip)))
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.limit-count))
		c.Next()
	}
}
