package reviewpress

import (
	"sync"
	"time"
)

// LoginLimiter throttles admin login attempts per client IP. Only failed
// attempts count; a successful login resets the counter.
type LoginLimiter struct {
	mu      sync.Mutex
	buckets map[string]*loginBucket
	max     int
	window  time.Duration
}

type loginBucket struct {
	failures int
	start    time.Time
}

// NewLoginLimiter allows max failed attempts per window for each IP.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		buckets: make(map[string]*loginBucket),
		max:     max,
		window:  window,
	}
	go l.cleanup()
	return l
}

func (l *LoginLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		for ip, b := range l.buckets {
			if now.Sub(b.start) > l.window {
				delete(l.buckets, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Check reports whether the IP may attempt a login. It records nothing;
// call Record after a failed attempt.
func (l *LoginLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		return true
	}
	if time.Since(b.start) > l.window {
		delete(l.buckets, ip)
		return true
	}
	return b.failures < l.max
}

// Record registers a failed login attempt for the IP.
func (l *LoginLimiter) Record(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok || time.Since(b.start) > l.window {
		l.buckets[ip] = &loginBucket{failures: 1, start: time.Now()}
		return
	}
	b.failures++
}

// Reset clears the failure count for the IP after a successful login.
func (l *LoginLimiter) Reset(ip string) {
	l.mu.Lock()
	delete(l.buckets, ip)
	l.mu.Unlock()
}
