package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds per-client request rate limits.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	IdleTTL           string  `toml:"idle_ttl"`
}

// RateLimitEnv maps rate limit config fields to environment variable names.
type RateLimitEnv struct {
	Enabled           string
	RequestsPerSecond string
	Burst             string
	IdleTTL           string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RateLimitConfig) Finalize(env *RateLimitEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *RateLimitConfig) Merge(overlay *RateLimitConfig) {
	c.Enabled = overlay.Enabled
	if overlay.RequestsPerSecond != 0 {
		c.RequestsPerSecond = overlay.RequestsPerSecond
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
	if overlay.IdleTTL != "" {
		c.IdleTTL = overlay.IdleTTL
	}
}

// IdleTTLDuration returns IdleTTL as a time.Duration.
func (c *RateLimitConfig) IdleTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTTL)
	return d
}

func (c *RateLimitConfig) loadDefaults() {
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 20
	}
	if c.Burst == 0 {
		c.Burst = 40
	}
	if c.IdleTTL == "" {
		c.IdleTTL = "3m"
	}
}

func (c *RateLimitConfig) loadEnv(env *RateLimitEnv) {
	envBool(env.Enabled, &c.Enabled)
	envFloat(env.RequestsPerSecond, &c.RequestsPerSecond)
	envInt(env.Burst, &c.Burst)
	envString(env.IdleTTL, &c.IdleTTL)
}

func (c *RateLimitConfig) validate() error {
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive: %v", c.RequestsPerSecond)
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be positive: %d", c.Burst)
	}
	if _, err := time.ParseDuration(c.IdleTTL); err != nil {
		return fmt.Errorf("invalid idle_ttl: %w", err)
	}
	return nil
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter tracks one token bucket per client address.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

// NewLimiter creates a Limiter from the config.
func NewLimiter(cfg *RateLimitConfig) *Limiter {
	return &Limiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		ttl:     cfg.IdleTTLDuration(),
		now:     time.Now,
	}
}

// Allow reports whether a request from addr may proceed.
func (l *Limiter) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.clients[addr]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[addr] = c
	}
	c.lastSeen = now

	return c.limiter.AllowN(now, 1)
}

// Sweep drops clients idle for longer than the TTL and returns how many
// were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for addr, c := range l.clients {
		if now.Sub(c.lastSeen) > l.ttl {
			delete(l.clients, addr)
			removed++
		}
	}
	return removed
}

// RateLimit returns middleware that rejects requests over the client's
// limit with 429. Passes through when disabled.
func RateLimit(cfg *RateLimitConfig, limiter *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(clientAddr(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
