// Package config holds the service configuration and its loader.
package config

import (
	"fmt"
	"strings"
	"time"

	"MiniCatalog/pkg/kit"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Shutdown ShutdownConfig `koanf:"shutdown"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Admin    AdminConfig    `koanf:"admin"`
}

type ServerConfig struct {
	Port    int `koanf:"port"`
	Timeout struct {
		ReadHeader time.Duration `koanf:"readheader"`
		Read       time.Duration `koanf:"read"`
		Write      time.Duration `koanf:"write"`
		Idle       time.Duration `koanf:"idle"`
	} `koanf:"timeout"`

	// TrustedProxies is a comma-separated list of CIDRs or addresses whose
	// X-Forwarded-For header names the client. Empty trusts nobody.
	TrustedProxies string `koanf:"trustedproxies"`
}

type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type AuthConfig struct {
	// Secret signs bearer tokens. Empty means a random key per process.
	Secret          string        `koanf:"secret"`
	TTL             time.Duration `koanf:"ttl"`
	SigninPerMinute int           `koanf:"signinperminute"`
	SignupPerMinute int           `koanf:"signupperminute"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Token   string `koanf:"token"`
}

type AdminConfig struct {
	Token string `koanf:"token"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.port":               8080,
		"server.trustedproxies":     "",
		"server.timeout.readheader": 5 * time.Second,
		"server.timeout.read":       10 * time.Second,
		"server.timeout.write":      10 * time.Second,
		"server.timeout.idle":       60 * time.Second,
		"shutdown.timeout":          10 * time.Second,
		"log.level":                 "info",
		"auth.secret":               "",
		"auth.ttl":                  time.Hour,
		"auth.signinperminute":      5,
		"auth.signupperminute":      3,
		"metrics.enabled":           true,
		"metrics.token":             "",
		"admin.token":               "",
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// ProxyRanges splits server.trustedproxies.
func (c *Config) ProxyRanges() []string {
	var out []string
	for _, p := range strings.Split(c.Server.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.Server.Port)
	}
	if _, err := kit.ParsePrefixes(c.ProxyRanges()); err != nil {
		return fmt.Errorf("server.trustedproxies: %w", err)
	}
	if c.Server.Timeout.ReadHeader <= 0 {
		return fmt.Errorf("invalid HTTP server read header timeout: %v", c.Server.Timeout.ReadHeader)
	}
	if c.Shutdown.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout is not configured")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q", c.Log.Level)
	}
	if c.Auth.TTL <= 0 {
		return fmt.Errorf("invalid token ttl: %v", c.Auth.TTL)
	}
	if c.Auth.Secret != "" && len(c.Auth.Secret) < 32 {
		return fmt.Errorf("auth secret must be at least 32 chars")
	}
	if c.Auth.SigninPerMinute < 0 || c.Auth.SignupPerMinute < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server ---\n")
	fmt.Fprintf(&b, "  server.port: %d\n", c.Server.Port)
	fmt.Fprintf(&b, "  server.trustedproxies: %q\n", c.Server.TrustedProxies)
	fmt.Fprintf(&b, "  server.timeout.readheader: %v\n", c.Server.Timeout.ReadHeader)
	fmt.Fprintf(&b, "  server.timeout.read: %v\n", c.Server.Timeout.Read)
	fmt.Fprintf(&b, "  server.timeout.write: %v\n", c.Server.Timeout.Write)
	fmt.Fprintf(&b, "  server.timeout.idle: %v\n", c.Server.Timeout.Idle)
	fmt.Fprintf(&b, "  shutdown.timeout: %v\n", c.Shutdown.Timeout)

	b.WriteString("\n--- Auth ---\n")
	fmt.Fprintf(&b, "  auth.secret: %s\n", mask(c.Auth.Secret))
	fmt.Fprintf(&b, "  auth.ttl: %v\n", c.Auth.TTL)
	fmt.Fprintf(&b, "  auth.signinperminute: %d\n", c.Auth.SigninPerMinute)
	fmt.Fprintf(&b, "  auth.signupperminute: %d\n", c.Auth.SignupPerMinute)

	b.WriteString("\n--- Operations ---\n")
	fmt.Fprintf(&b, "  log.level: %s\n", c.Log.Level)
	fmt.Fprintf(&b, "  metrics.enabled: %t\n", c.Metrics.Enabled)
	fmt.Fprintf(&b, "  metrics.token: %s\n", mask(c.Metrics.Token))
	fmt.Fprintf(&b, "  admin.token: %s\n", mask(c.Admin.Token))

	return b.String()
}

func mask(secret string) string {
	if secret == "" {
		return "<not configured>"
	}
	return "****"
}
