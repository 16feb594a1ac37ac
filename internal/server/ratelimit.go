package server

import (
	"sync"
	"time"

	"github.com/lawnchairsociety/landforge/internal/config"
)

// RequestRateLimiter counts generation requests per IP in fixed windows and
// locks out clients that exceed the limit, doubling the lockout on repeats.
type RequestRateLimiter struct {
	mu                sync.Mutex
	clients           map[string]*requestInfo
	maxRequests       int
	window            time.Duration
	lockoutSeconds    int
	maxLockoutSeconds int
	cleanupInterval   time.Duration
	stopCleanup       chan struct{}
	now               func() time.Time
}

type requestInfo struct {
	windowStart  time.Time
	requests     int
	lockedUntil  time.Time
	lockoutCount int // for exponential backoff
}

// NewRequestRateLimiter creates a new rate limiter with the given config.
func NewRequestRateLimiter(cfg config.RateLimitConfig) *RequestRateLimiter {
	rl := &RequestRateLimiter{
		clients:           make(map[string]*requestInfo),
		maxRequests:       cfg.MaxRequests,
		window:            time.Duration(cfg.WindowSeconds) * time.Second,
		lockoutSeconds:    cfg.LockoutSeconds,
		maxLockoutSeconds: cfg.MaxLockoutSeconds,
		cleanupInterval:   5 * time.Minute,
		stopCleanup:       make(chan struct{}),
		now:               time.Now,
	}

	if rl.maxRequests == 0 {
		rl.maxRequests = 30
	}
	if rl.window == 0 {
		rl.window = time.Minute
	}
	if rl.lockoutSeconds == 0 {
		rl.lockoutSeconds = 30
	}
	if rl.maxLockoutSeconds == 0 {
		rl.maxLockoutSeconds = 300
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the cleanup goroutine.
func (rl *RequestRateLimiter) Stop() {
	close(rl.stopCleanup)
}

// Allow records a request from ip. It returns false and the remaining
// lockout while the client is locked out.
func (rl *RequestRateLimiter) Allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, ok := rl.clients[ip]
	if !ok {
		info = &requestInfo{windowStart: now}
		rl.clients[ip] = info
	}

	if now.Before(info.lockedUntil) {
		return false, info.lockedUntil.Sub(now)
	}
	if now.Sub(info.windowStart) >= rl.window {
		info.windowStart = now
		info.requests = 0
	}

	info.requests++
	if info.requests <= rl.maxRequests {
		return true, 0
	}

	info.lockoutCount++
	lockout := time.Duration(rl.lockoutSeconds) * time.Second
	maxLockout := time.Duration(rl.maxLockoutSeconds) * time.Second
	for i := 1; i < info.lockoutCount; i++ {
		// Check before multiplication to prevent overflow
		if lockout >= maxLockout/2 {
			lockout = maxLockout
			break
		}
		lockout *= 2
	}
	if lockout > maxLockout {
		lockout = maxLockout
	}
	info.lockedUntil = now.Add(lockout)
	info.requests = 0
	info.windowStart = info.lockedUntil
	return false, lockout
}

// cleanupLoop periodically removes idle entries.
func (rl *RequestRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCleanup:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup removes entries that are unlocked and idle for ten minutes.
func (rl *RequestRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	for ip, info := range rl.clients {
		if info.lockedUntil.Before(cutoff) && info.windowStart.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}
