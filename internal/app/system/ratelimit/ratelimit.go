// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts hits per key in fixed windows that open on a key's first
// hit. It is safe for concurrent use.
type Limiter struct {
	mu     sync.Mutex
	counts map[string]*window
	limit  int
	span   time.Duration
	now    func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	hits    int
	expires time.Time
}

// New creates a limiter allowing limit hits per key every span. A
// background sweep drops expired keys until Stop is called.
func New(limit int, span time.Duration) *Limiter {
	l := newLimiter(limit, span, time.Now)
	go l.sweep(2 * span)
	return l
}

func newLimiter(limit int, span time.Duration, now func() time.Time) *Limiter {
	return &Limiter{
		counts: make(map[string]*window),
		limit:  limit,
		span:   span,
		now:    now,
		stop:   make(chan struct{}),
	}
}

// current returns the live window for key, or nil. Caller holds mu.
func (l *Limiter) current(key string) *window {
	w := l.counts[key]
	if w == nil || !l.now().Before(w.expires) {
		return nil
	}
	return w
}

// Allow records a hit for key and reports whether it was within the limit.
// A rejected hit is not counted.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.current(key)
	if w == nil {
		l.counts[key] = &window{hits: 1, expires: l.now().Add(l.span)}
		return true
	}
	if w.hits >= l.limit {
		return false
	}
	w.hits++
	return true
}

// Remaining returns how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.current(key)
	if w == nil {
		return l.limit
	}
	if w.hits >= l.limit {
		return 0
	}
	return l.limit - w.hits
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.counts, key)
	l.mu.Unlock()
}

// Stop ends the background sweep. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			for key := range l.counts {
				if l.current(key) == nil {
					delete(l.counts, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// ClientIP returns the client address for r: the first X-Forwarded-For
// entry, then X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// JoinLimiter guards invite code lookups against guessing. It tracks an
// IP-wide limit on every attempt and a per-user limit on misses only, so a
// user who mistypes a code a few times is not locked out of a good one.
type JoinLimiter struct {
	ipLimiter   *Limiter
	missLimiter *Limiter
}

// NewJoinLimiter creates a limiter configured for join protection.
// Defaults: 30 attempts per IP per minute, 5 misses per user per 5 minutes.
func NewJoinLimiter() *JoinLimiter {
	return NewJoinLimiterWithConfig(30, time.Minute, 5, 5*time.Minute)
}

// NewJoinLimiterWithConfig creates a join limiter with custom limits.
func NewJoinLimiterWithConfig(ipLimit int, ipDuration time.Duration, missLimit int, missDuration time.Duration) *JoinLimiter {
	return &JoinLimiter{
		ipLimiter:   New(ipLimit, ipDuration),
		missLimiter: New(missLimit, missDuration),
	}
}

// Check verifies if a join attempt should be allowed.
// Returns (allowed, reason) where reason explains why it was blocked.
func (jl *JoinLimiter) Check(r *http.Request, userID string) (bool, string) {
	if !jl.ipLimiter.Allow(ClientIP(r)) {
		return false, "too many join attempts, wait a minute before trying again"
	}
	if jl.missLimiter.Remaining(userID) == 0 {
		return false, "too many unknown invite codes, wait a few minutes"
	}
	return true, ""
}

// Miss records a lookup that matched no group.
func (jl *JoinLimiter) Miss(userID string) {
	jl.missLimiter.Allow(userID)
}

// Reset clears the miss count for userID after a successful request.
func (jl *JoinLimiter) Reset(userID string) {
	jl.missLimiter.Reset(userID)
}

// Stop ends both limiters' background sweeps.
func (jl *JoinLimiter) Stop() {
	jl.ipLimiter.Stop()
	jl.missLimiter.Stop()
}
