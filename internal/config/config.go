// Package config loads the preview server settings from server.yaml.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds preview server configuration settings.
type ServerConfig struct {
	// Listen is the HTTP address the websocket endpoint is served on.
	Listen      string            `yaml:"listen"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Generation  GenerationConfig  `yaml:"generation"`
	Catalog     CatalogConfig     `yaml:"catalog"`
}

// RateLimitConfig limits generation requests per client IP.
type RateLimitConfig struct {
	// MaxRequests is the number of requests allowed per window.
	MaxRequests int `yaml:"max_requests"`

	// WindowSeconds is the length of the counting window.
	WindowSeconds int `yaml:"window_seconds"`

	// LockoutSeconds is the initial lockout once the limit is hit.
	LockoutSeconds int `yaml:"lockout_seconds"`

	// MaxLockoutSeconds caps the exponential backoff.
	MaxLockoutSeconds int `yaml:"max_lockout_seconds"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections allowed from a single IP address.
	// 0 means unlimited (not recommended).
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent connections to the server.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum inbound WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// GenerationConfig controls what the server generates.
type GenerationConfig struct {
	// ParamsPath is the landmasses.yml file. Empty falls back to the
	// LANDFORGE_PARAMS variable, then data/landmasses.yml.
	ParamsPath string `yaml:"params_path"`

	// MaxConcurrent bounds simultaneous generations across all clients.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// CatalogConfig selects where served runs are recorded.
type CatalogConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`

	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     int    `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresDatabase string `yaml:"postgres_database"`
	PostgresSSLMode  string `yaml:"postgres_sslmode"`
}

// DefaultConfig returns a ServerConfig with secure defaults.
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Listen: ":4480",
		WebSocket: WebSocketConfig{
			AllowedOrigins: []string{}, // Same-origin only by default
			MaxMessageSize: 1024,
		},
		Connections: ConnectionsConfig{
			MaxPerIP: 3,
			MaxTotal: 50,
		},
		RateLimit: RateLimitConfig{
			MaxRequests:       30,
			WindowSeconds:     60,
			LockoutSeconds:    30,
			MaxLockoutSeconds: 300,
		},
		Generation: GenerationConfig{
			MaxConcurrent: 4,
		},
		Catalog: CatalogConfig{
			Driver:          "sqlite",
			SQLitePath:      "data/runs.db",
			PostgresHost:    "localhost",
			PostgresPort:    5432,
			PostgresSSLMode: "disable",
		},
	}
}

// LoadConfig loads server configuration from a YAML file.
// If the file doesn't exist, returns default config.
func LoadConfig(path string) (*ServerConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Use defaults if file doesn't exist
		}
		return config, fmt.Errorf("failed to read server config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse server config %s: %w", path, err)
	}

	return config, nil
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means a non-browser client
	}

	// "http://localhost:3000" -> "localhost:3000"
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
