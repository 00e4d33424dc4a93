package profile

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is configuration to start main server.
type Profile struct {
	// Listener configuration
	Mode     string
	Addr     string
	UNIXSock string
	Port     int

	// Logging configuration
	LogLevel  string // debug, info, warn, error
	LogFormat string // text, json; empty selects by mode

	// HTTP configuration
	CORSOrigins     []string      // Allowed CORS origins, "*" allows all
	RateLimit       float64       // Requests per second per client IP, 0 disables
	BodyLimit       string        // Maximum request body size, e.g. "1M"
	ShutdownTimeout time.Duration // Graceful shutdown timeout
	MetricsEnabled  bool

	Version string
}

var validLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultFloat returns environment variable value as float or default value.
func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
		slog.Warn("Ignoring invalid number in environment", "key", key, "value", value)
	}
	return defaultValue
}

// getEnvOrDefaultDuration returns environment variable value as duration or default value.
func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("Ignoring invalid duration in environment", "key", key, "value", value)
	}
	return defaultValue
}

// FromEnv loads configuration that has no command line flag from environment variables.
// Values already set on the profile are kept.
func (p *Profile) FromEnv() {
	if p.LogFormat == "" {
		p.LogFormat = getEnvOrDefault("UIHINT_LOG_FORMAT", "")
	}
	if len(p.CORSOrigins) == 0 {
		if origins := getEnvOrDefault("UIHINT_CORS_ORIGINS", ""); origins != "" {
			p.CORSOrigins = splitList(origins)
		}
	}
	if p.RateLimit == 0 {
		p.RateLimit = getEnvOrDefaultFloat("UIHINT_RATE_LIMIT", 0)
	}
	if p.BodyLimit == "" {
		p.BodyLimit = getEnvOrDefault("UIHINT_BODY_LIMIT", "1M")
	}
	if p.ShutdownTimeout == 0 {
		p.ShutdownTimeout = getEnvOrDefaultDuration("UIHINT_SHUTDOWN_TIMEOUT", 10*time.Second)
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// SlogLevel returns the configured log level.
func (p *Profile) SlogLevel() slog.Level {
	if level, ok := validLogLevels[strings.ToLower(p.LogLevel)]; ok {
		return level
	}
	return slog.LevelInfo
}

// ListenAddr returns the TCP address the server listens on.
func (p *Profile) ListenAddr() string {
	return fmt.Sprintf("%s:%d", p.Addr, p.Port)
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.UNIXSock == "" && (p.Port < 0 || p.Port > 65535) {
		return errors.Errorf("invalid port %d", p.Port)
	}

	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if _, ok := validLogLevels[strings.ToLower(p.LogLevel)]; !ok {
		return errors.Errorf("invalid log level %q", p.LogLevel)
	}

	switch p.LogFormat {
	case "":
		if p.IsDev() {
			p.LogFormat = "text"
		} else {
			p.LogFormat = "json"
		}
	case "text", "json":
	default:
		return errors.Errorf("invalid log format %q", p.LogFormat)
	}

	if p.RateLimit < 0 {
		return errors.Errorf("invalid rate limit %v", p.RateLimit)
	}
	if p.ShutdownTimeout <= 0 {
		p.ShutdownTimeout = 10 * time.Second
	}
	if p.BodyLimit == "" {
		p.BodyLimit = "1M"
	}

	return nil
}
