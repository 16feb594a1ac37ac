package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/lawnchairsociety/landforge/internal/config"
)

func TestConnLimiter_PerIPLimit(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{
		MaxPerIP: 2,
		MaxTotal: 100,
	}, config.GenerationConfig{})

	if !limiter.TryAcquire("192.168.1.1") {
		t.Error("first connection should be allowed")
	}
	if !limiter.TryAcquire("192.168.1.1") {
		t.Error("second connection should be allowed")
	}
	if limiter.TryAcquire("192.168.1.1") {
		t.Error("third connection from same IP should be rejected")
	}
	if !limiter.TryAcquire("192.168.1.2") {
		t.Error("connection from different IP should be allowed")
	}

	limiter.Release("192.168.1.1")
	if !limiter.TryAcquire("192.168.1.1") {
		t.Error("connection should be allowed after release")
	}
}

func TestConnLimiter_TotalLimit(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{
		MaxPerIP: 10,
		MaxTotal: 3,
	}, config.GenerationConfig{})

	for _, ip := range []string{"192.168.1.1", "192.168.1.2", "192.168.1.3"} {
		if !limiter.TryAcquire(ip) {
			t.Errorf("connection from %s should be allowed", ip)
		}
	}
	if limiter.TryAcquire("192.168.1.4") {
		t.Error("fourth connection should be rejected by the total limit")
	}

	if st := limiter.Stats(); st.Sessions != 3 || st.IPs != 3 {
		t.Errorf("Stats() = %+v, want 3 sessions from 3 IPs", st)
	}
}

func TestConnLimiter_Unlimited(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{}, config.GenerationConfig{})
	for i := 0; i < 100; i++ {
		if !limiter.TryAcquire("10.0.0.1") {
			t.Fatalf("connection %d rejected with no limits", i)
		}
	}
}

func TestConnLimiter_ReleaseCleansUp(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{MaxPerIP: 5, MaxTotal: 5}, config.GenerationConfig{})
	limiter.TryAcquire("10.0.0.1")
	limiter.Release("10.0.0.1")
	// Releasing an unknown IP must not go negative.
	limiter.Release("10.0.0.2")

	if st := limiter.Stats(); st.Sessions != 0 || st.IPs != 0 {
		t.Errorf("Stats() = %+v, want no sessions", st)
	}
}

func TestConnLimiter_GenerationSlots(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{}, config.GenerationConfig{MaxConcurrent: 1})
	limiter.TryAcquire("10.0.0.1")
	limiter.TryAcquire("10.0.0.2")

	if err := limiter.AcquireGeneration(context.Background(), "10.0.0.1"); err != nil {
		t.Fatalf("first generation slot: %v", err)
	}
	if st := limiter.Stats(); st.Generating != 1 {
		t.Errorf("Generating = %d, want 1", st.Generating)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.AcquireGeneration(ctx, "10.0.0.2"); err == nil {
		t.Fatal("second generation got a slot while the only one was held")
	}

	limiter.ReleaseGeneration("10.0.0.1")
	if err := limiter.AcquireGeneration(context.Background(), "10.0.0.2"); err != nil {
		t.Fatalf("slot not freed by ReleaseGeneration: %v", err)
	}
	limiter.ReleaseGeneration("10.0.0.2")

	st := limiter.Stats()
	if st.Generating != 0 || st.Served != 2 {
		t.Errorf("Stats() = %+v, want 0 generating and 2 served", st)
	}
	if n := limiter.Served("10.0.0.1"); n != 1 {
		t.Errorf("Served(10.0.0.1) = %d, want 1", n)
	}
}

func TestConnLimiter_GenerationOutlivesSession(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{}, config.GenerationConfig{MaxConcurrent: 2})
	limiter.TryAcquire("10.0.0.1")
	if err := limiter.AcquireGeneration(context.Background(), "10.0.0.1"); err != nil {
		t.Fatal(err)
	}
	limiter.Release("10.0.0.1")
	if st := limiter.Stats(); st.IPs != 1 {
		t.Errorf("IPs = %d while a generation is running, want 1", st.IPs)
	}
	limiter.ReleaseGeneration("10.0.0.1")
	if st := limiter.Stats(); st.IPs != 0 || st.Sessions != 0 {
		t.Errorf("Stats() = %+v after the generation finished, want empty", st)
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"192.168.1.1:12345", "192.168.1.1"},
		{"[::1]:8080", "::1"},
		{"10.0.0.1", "10.0.0.1"},
	}

	for _, tt := range tests {
		if got := extractIP(tt.input); got != tt.expected {
			t.Errorf("extractIP(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGetRealIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{"remote addr", nil, "192.168.1.1:4480", "192.168.1.1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:4480", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.2 "}, "10.0.0.1:4480", "198.51.100.2"},
		{"forwarded wins", map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "198.51.100.2"}, "10.0.0.1:4480", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := http.NewRequest(http.MethodGet, "/ws", nil)
			if err != nil {
				t.Fatal(err)
			}
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := getRealIP(r); got != tt.expected {
				t.Errorf("getRealIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}
