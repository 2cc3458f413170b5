package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter manages per-caller rate limiting
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	logger   *logger.Logger
}

// NewRateLimiter creates a new rate limiter
// rps: requests per second, burst: maximum burst size
func NewRateLimiter(rps int, burst int, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		logger:   log,
	}
}

// getLimiter returns a rate limiter for the given identifier
func (rl *RateLimiter) getLimiter(identifier string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[identifier]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[identifier] = limiter
	}

	return limiter
}

// Cleanup periodically resets the limiter map so stale entries do not
// accumulate. Should run in its own goroutine.
func (rl *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			rl.limiters = make(map[string]*rate.Limiter)
			rl.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// RateLimit is a middleware that applies rate limiting per caller IP
func RateLimit(rl *RateLimiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := getIdentifier(r)

			limiter := rl.getLimiter(identifier)

			if !limiter.Allow() {
				rl.logger.Warn("Rate limit exceeded", zap.String("identifier", identifier), zap.String("path", r.URL.Path))
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.burst))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", "60")
				respondError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitWithConfig creates a rate limiter middleware with specific limits
func RateLimitWithConfig(rps int, burst int, log *logger.Logger) func(next http.Handler) http.Handler {
	rl := NewRateLimiter(rps, burst, log)
	return RateLimit(rl)
}

// getIdentifier extracts a caller identifier for rate limiting
func getIdentifier(r *http.Request) string {
	ip := r.RemoteAddr
	// If behind a proxy, try to get the real IP
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ip = forwarded
	} else if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		ip = realIP
	}

	return fmt.Sprintf("ip:%s", ip)
}
