package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/salemate/franchise-performance/internal/comparison"
	"github.com/salemate/franchise-performance/internal/config"
	"github.com/salemate/franchise-performance/pkg/constants"
	"gopkg.in/yaml.v3"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address          string               `yaml:"address"`
	MaxBodySize      string               `yaml:"maxBodySize"`
	ReadTimeout      time.Duration        `yaml:"readTimeout"`
	WriteTimeout     time.Duration        `yaml:"writeTimeout"`
	ShutdownTimeout  time.Duration        `yaml:"shutdownTimeout"`
	DefaultTimeFrame string               `yaml:"defaultTimeFrame"`
	Logging          config.LoggingConfig `yaml:"logging"`
	bodySizeBytes    int64
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:          constants.DefaultServerAddress,
		MaxBodySize:      fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes),
		ReadTimeout:      defaultReadTimeout,
		WriteTimeout:     defaultWriteTimeout,
		ShutdownTimeout:  defaultShutdownTimeout,
		DefaultTimeFrame: string(comparison.Monthly),
		Logging:          config.LoggingConfig{},
		bodySizeBytes:    constants.DefaultMaxBodySizeBytes,
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BodySizeBytes returns the configured request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

// SetBodySizeBytes overrides the configured request body limit.
func (c *Config) SetBodySizeBytes(size int64) {
	if size > 0 {
		c.bodySizeBytes = size
		c.MaxBodySize = fmt.Sprintf("%d", size)
	}
}

// TimeFrame returns the time frame used when a comparison request names none.
func (c *Config) TimeFrame() comparison.TimeFrame {
	tf, err := comparison.ParseTimeFrame(c.DefaultTimeFrame)
	if err != nil {
		return comparison.Monthly
	}
	return tf
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = defaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if strings.TrimSpace(c.DefaultTimeFrame) == "" {
		c.DefaultTimeFrame = string(comparison.Monthly)
	}
	if _, err := comparison.ParseTimeFrame(c.DefaultTimeFrame); err != nil {
		return err
	}

	sizeStr := strings.TrimSpace(c.MaxBodySize)
	if sizeStr == "" {
		c.bodySizeBytes = constants.DefaultMaxBodySizeBytes
		c.MaxBodySize = fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodySizeBytes
	}
	c.bodySizeBytes = bytes
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	if numPart == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
