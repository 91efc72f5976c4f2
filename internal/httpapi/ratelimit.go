package httpapi

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter controls the rate of requests using a token bucket algorithm.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute
	BurstSize         int // Maximum burst size (default: same as RPM)
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60 // Default: 60 RPM
	}

	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm // Default burst = RPM
	}

	return &RateLimiter{
		tokens:     burst, // Start with full bucket
		maxTokens:  burst,
		refillRate: rpm / 60.0, // Convert to tokens per second
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.TryAcquire() {
			return nil
		}

		// Calculate wait time for next token
		r.mu.Lock()
		waitTime := time.Duration(float64(time.Second) / r.refillRate)
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
			// Try again
		}
	}
}

// TryAcquire attempts to acquire a token without blocking.
// Returns true if a token was acquired, false otherwise.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens >= 1 {
		r.tokens--
		return true
	}

	return false
}

// refill adds tokens based on elapsed time (must be called with lock held).
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// Available returns the current number of available tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// ClientLimiter keeps one token bucket per client address.
type ClientLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	buckets map[string]*clientBucket
	idle    time.Duration
}

type clientBucket struct {
	limiter  *RateLimiter
	lastSeen time.Time
}

// NewClientLimiter creates a per-client limiter. Buckets idle for longer than
// ten minutes are dropped on the next sweep.
func NewClientLimiter(cfg RateLimitConfig) *ClientLimiter {
	return &ClientLimiter{
		cfg:     cfg,
		buckets: make(map[string]*clientBucket),
		idle:    10 * time.Minute,
	}
}

// For returns the bucket of client, creating it on first use.
func (c *ClientLimiter) For(client string) *RateLimiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	b, ok := c.buckets[client]
	if !ok {
		b = &clientBucket{limiter: NewRateLimiter(c.cfg)}
		c.buckets[client] = b
	}
	b.lastSeen = now
	return b.limiter
}

// Sweep drops buckets that have not been used for the idle period.
func (c *ClientLimiter) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-c.idle)
	dropped := 0
	for k, b := range c.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(c.buckets, k)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of tracked clients.
func (c *ClientLimiter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets)
}

// Middleware rejects requests with 429 once the client's bucket is empty.
func (c *ClientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.For(clientKey(r)).TryAcquire() {
			w.Header().Set("Retry-After", strconv.Itoa(c.retryAfter()))
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfter is the number of whole seconds until one token refills.
func (c *ClientLimiter) retryAfter() int {
	rpm := c.cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	secs := 60 / rpm
	if secs < 1 {
		secs = 1
	}
	return secs
}

// clientKey identifies the caller by host, without the port. chi's RealIP
// middleware has already rewritten RemoteAddr when behind a proxy.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
