package governance

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiterConfig defines fixed-window rate limit settings.
type RateLimiterConfig struct {
	// Window is the fixed window length.
	Window time.Duration
	// MaxRequests is the number of requests admitted per client per window.
	MaxRequests int
	// ProxyHeader, when set, names a trusted header carrying the real client
	// address. Empty means the transport RemoteAddr is used.
	ProxyHeader string
}

// RateLimiter implements fixed-window rate limiting per client key.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	config  RateLimiterConfig
}

// window tracks one client's request count within the current fixed window.
type window struct {
	start time.Time
	count int
}

// NewRateLimiter creates a rate limiter with the provided configuration.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
	}
	rl.Configure(config)
	return rl
}

// Configure updates the limiter with new settings. Existing windows are kept;
// they will be judged against the new limits on their next request.
func (rl *RateLimiter) Configure(config RateLimiterConfig) {
	if config.MaxRequests <= 0 {
		config.MaxRequests = 100
	}
	if config.Window <= 0 {
		config.Window = 15 * time.Minute
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.config = config
}

// Allow checks whether a request from the given client key should be admitted.
// It returns the admission decision, the remaining budget in the current
// window, and the time at which the window resets.
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, reset time.Time) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	win, ok := rl.windows[key]
	if !ok || now.Sub(win.start) >= rl.config.Window {
		win = &window{start: now}
		rl.windows[key] = win
	}

	reset = win.start.Add(rl.config.Window)

	if win.count >= rl.config.MaxRequests {
		return false, 0, reset
	}

	win.count++
	return true, rl.config.MaxRequests - win.count, reset
}

// Evict drops windows that have already expired. Called periodically so the
// key map stays bounded under client churn or address spoofing.
func (rl *RateLimiter) Evict() int {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	evicted := 0
	for key, win := range rl.windows {
		if now.Sub(win.start) >= rl.config.Window {
			delete(rl.windows, key)
			evicted++
		}
	}
	return evicted
}

// EvictLoop runs Evict once per window length until stop is closed.
func (rl *RateLimiter) EvictLoop(stop <-chan struct{}) {
	for {
		rl.mu.Lock()
		interval := rl.config.Window
		rl.mu.Unlock()

		select {
		case <-stop:
			return
		case <-time.After(interval):
			rl.Evict()
		}
	}
}

// TrackedClients returns the number of client keys currently tracked.
func (rl *RateLimiter) TrackedClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}

// Limit returns the currently configured per-window maximum.
func (rl *RateLimiter) Limit() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.config.MaxRequests
}

// ClientKey derives the rate-limit key for a request: the trusted proxy
// header when configured, otherwise the RemoteAddr host.
func (rl *RateLimiter) ClientKey(r *http.Request) string {
	rl.mu.Lock()
	header := rl.config.ProxyHeader
	rl.mu.Unlock()

	if header != "" {
		if val := r.Header.Get(header); val != "" {
			// X-Forwarded-For may carry a chain; the first hop is the client.
			if idx := strings.IndexByte(val, ','); idx >= 0 {
				val = val[:idx]
			}
			return strings.TrimSpace(val)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WriteRateLimitHeaders adds standard rate limit headers to the response.
func WriteRateLimitHeaders(w http.ResponseWriter, limit, remaining int, resetTime time.Time) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))
}

// WriteRetryAfter reports when a throttled client may try again.
func WriteRetryAfter(w http.ResponseWriter, reset time.Time) {
	seconds := int(time.Until(reset).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
}
