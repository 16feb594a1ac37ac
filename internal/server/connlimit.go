package server

import (
	"context"
	"net"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/lawnchairsociety/landforge/internal/config"
)

// ConnLimiter admits preview sessions per client IP and in total, and hands
// out the generation slots those sessions compete for.
type ConnLimiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	sessions int
	maxPerIP int
	maxTotal int

	slots      *semaphore.Weighted
	generating int
	served     uint64
}

// client is the per-IP bookkeeping.
type client struct {
	sessions   int
	generating int
	served     uint64
}

// ConnStats is a snapshot of a ConnLimiter.
type ConnStats struct {
	Sessions   int    // open sessions
	IPs        int    // distinct client IPs with a session or generation
	Generating int    // generations holding a slot
	Served     uint64 // generations finished since start
}

// NewConnLimiter creates a limiter from the connection limits and the
// generation concurrency bound. A bound below one allows a single slot.
func NewConnLimiter(conns config.ConnectionsConfig, gen config.GenerationConfig) *ConnLimiter {
	return &ConnLimiter{
		clients:  make(map[string]*client),
		maxPerIP: conns.MaxPerIP,
		maxTotal: conns.MaxTotal,
		slots:    semaphore.NewWeighted(int64(max(gen.MaxConcurrent, 1))),
	}
}

// TryAcquire attempts to open a session for the given IP.
// Returns false if the session would exceed a limit.
func (c *ConnLimiter) TryAcquire(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxTotal > 0 && c.sessions >= c.maxTotal {
		return false
	}
	cl := c.clients[ip]
	if c.maxPerIP > 0 && cl != nil && cl.sessions >= c.maxPerIP {
		return false
	}
	if cl == nil {
		cl = &client{}
		c.clients[ip] = cl
	}
	cl.sessions++
	c.sessions++
	return true
}

// Release closes a session for the given IP.
func (c *ConnLimiter) Release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cl := c.clients[ip]; cl != nil && cl.sessions > 0 {
		cl.sessions--
		c.sessions--
		if cl.sessions == 0 && cl.generating == 0 {
			delete(c.clients, ip)
		}
	}
}

// AcquireGeneration blocks until a generation slot is free or ctx is done.
// Every successful call must be paired with ReleaseGeneration.
func (c *ConnLimiter) AcquireGeneration(ctx context.Context, ip string) error {
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generating++
	if cl := c.clients[ip]; cl != nil {
		cl.generating++
	}
	return nil
}

// ReleaseGeneration frees the slot taken by AcquireGeneration and counts
// the generation as served.
func (c *ConnLimiter) ReleaseGeneration(ip string) {
	c.mu.Lock()
	c.generating--
	c.served++
	if cl := c.clients[ip]; cl != nil {
		if cl.generating > 0 {
			cl.generating--
		}
		cl.served++
		if cl.sessions == 0 && cl.generating == 0 {
			delete(c.clients, ip)
		}
	}
	c.mu.Unlock()
	c.slots.Release(1)
}

// Served returns the number of generations finished for ip by its open
// sessions.
func (c *ConnLimiter) Served(ip string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cl := c.clients[ip]; cl != nil {
		return cl.served
	}
	return 0
}

// Stats returns a snapshot of sessions and generations.
func (c *ConnLimiter) Stats() ConnStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConnStats{
		Sessions:   c.sessions,
		IPs:        len(c.clients),
		Generating: c.generating,
		Served:     c.served,
	}
}

// extractIP extracts the IP address from a remote address string (ip:port format).
func extractIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
