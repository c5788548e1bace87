package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-craftscore"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64
	MaxImageBytes      int64
	MaxImagePixels     int
	AllowedImageHosts  []string
	Disabled           craftscore.Capability
}

func (c *Config) ServerAddress() string {
	return net.JoinHostPort(strings.TrimSpace(c.Host), strings.TrimSpace(c.Port))
}

// Scorer builds the library config the handlers share. It is fully
// populated before use so concurrent requests only read it.
func (c *Config) Scorer() *craftscore.Config {
	sc := craftscore.New()
	sc.FetchTimeout = c.ImageFetchTimeout
	sc.MaxImageBytes = c.MaxImageBytes
	if c.MaxImagePixels > 0 {
		sc.MaxPixels = c.MaxImagePixels
	}
	sc.Disabled = c.Disabled
	return sc
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", craftscore.DefaultFetchTimeout),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 1<<20),
		MaxImageBytes:      parseIntOrDefault("MAX_IMAGE_BYTES", craftscore.DefaultMaxImageBytes),
		MaxImagePixels:     int(parseIntOrDefault("MAX_IMAGE_PIXELS", craftscore.DefaultMaxPixels)),
		AllowedImageHosts:  parseListOrEmpty("ALLOWED_IMAGE_HOSTS"),
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.MaxImageBytes <= 0 {
		return nil, fmt.Errorf("MAX_IMAGE_BYTES must be > 0 (got %d)", cfg.MaxImageBytes)
	}
	if cfg.MaxImagePixels <= 0 {
		return nil, fmt.Errorf("MAX_IMAGE_PIXELS must be > 0 (got %d)", cfg.MaxImagePixels)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout)
	}

	disabled, unknown := craftscore.ParseCapabilities(os.Getenv("DISABLE_CAPABILITIES"))
	if len(unknown) > 0 {
		return nil, fmt.Errorf("DISABLE_CAPABILITIES: unknown capabilities %s", strings.Join(unknown, ", "))
	}
	cfg.Disabled = disabled
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseListOrEmpty(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
