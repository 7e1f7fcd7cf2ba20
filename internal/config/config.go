// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (FETCHD_* runtime override)
//  2. Config file (~/.fetchd/config.yaml, or ./config.yaml)
//  3. Default values
//
// Validation uses sentinel errors so callers can check failure classes
// with errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidTimeout indicates the download timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid download timeout")

	// ErrInvalidMaxSize indicates the download size cap is out of range.
	ErrInvalidMaxSize = errors.New("invalid download size cap")

	// ErrInvalidParallelism indicates the batch parallelism is out of range.
	ErrInvalidParallelism = errors.New("invalid batch parallelism")

	// ErrInvalidRateLimit indicates the request rate limit is negative.
	ErrInvalidRateLimit = errors.New("invalid rate limit")

	// ErrInvalidDownloadDir indicates the download directory is unusable.
	ErrInvalidDownloadDir = errors.New("invalid download directory")

	// ErrInvalidLogLevel indicates the log level string is unknown.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

const (
	// DefaultTimeoutSeconds is the per-download timeout.
	DefaultTimeoutSeconds = 60

	// DefaultMaxSizeMB is the per-download size cap.
	DefaultMaxSizeMB = 500

	// DefaultParallelism bounds concurrent transfers in a batch.
	DefaultParallelism = 4

	// DefaultUserAgent is a realistic browser identifier. Some servers
	// reject Go's default "Go-http-client" outright, so downloads present
	// this instead.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
)

// DownloadConfig holds the download engine settings.
type DownloadConfig struct {
	// Dir is the destination directory. Empty means ~/Downloads/fetchd,
	// resolved at load time.
	Dir string `mapstructure:"dir" json:"dir"`

	// TimeoutSeconds is the per-download timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" json:"timeout_seconds"`

	// MaxSizeMB is the per-download size cap in MiB.
	MaxSizeMB int `mapstructure:"max_size_mb" json:"max_size_mb"`

	// Parallelism bounds concurrent transfers in a batch.
	Parallelism int `mapstructure:"parallelism" json:"parallelism"`

	// RateLimit is the maximum request starts per second across a batch.
	// Zero disables throttling.
	RateLimit float64 `mapstructure:"rate_limit" json:"rate_limit"`

	// UserAgent overrides the User-Agent header presented to servers.
	UserAgent string `mapstructure:"user_agent" json:"user_agent"`
}

// SecurityConfig holds outbound request policy.
type SecurityConfig struct {
	// BlockPrivateHosts enables SSRF protection: requests to loopback,
	// RFC 1918 ranges, link-local addresses, and cloud metadata hosts
	// are refused. Off by default; a download server is normally asked
	// to fetch arbitrary public URLs.
	BlockPrivateHosts bool `mapstructure:"block_private_hosts" json:"block_private_hosts"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
	JSON  bool   `mapstructure:"json" json:"json"`
}

// Config is the application configuration.
type Config struct {
	Download DownloadConfig `mapstructure:"download" json:"download"`
	Security SecurityConfig `mapstructure:"security" json:"security"`
	Log      LogConfig      `mapstructure:"log" json:"log"`
}

// Timeout returns the per-download timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Download.TimeoutSeconds) * time.Second
}

// MaxBytes returns the per-download size cap in bytes.
func (c *Config) MaxBytes() int64 {
	return int64(c.Download.MaxSizeMB) * 1024 * 1024
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".fetchd")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v, home)

	v.SetEnvPrefix("FETCHD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults seeds all default configuration values.
func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("download.dir", filepath.Join(home, "Downloads", "fetchd"))
	v.SetDefault("download.timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("download.max_size_mb", DefaultMaxSizeMB)
	v.SetDefault("download.parallelism", DefaultParallelism)
	v.SetDefault("download.rate_limit", 0.0)
	v.SetDefault("download.user_agent", DefaultUserAgent)

	v.SetDefault("security.block_private_hosts", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Validate checks configuration values and fails fast on nonsense.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.Download.TimeoutSeconds <= 0 || c.Download.TimeoutSeconds > 3600 {
		return fmt.Errorf("%w: %d seconds (want 1-3600)", ErrInvalidTimeout, c.Download.TimeoutSeconds)
	}
	if c.Download.MaxSizeMB <= 0 || c.Download.MaxSizeMB > 100*1024 {
		return fmt.Errorf("%w: %d MB (want 1-102400)", ErrInvalidMaxSize, c.Download.MaxSizeMB)
	}
	if c.Download.Parallelism <= 0 || c.Download.Parallelism > 64 {
		return fmt.Errorf("%w: %d (want 1-64)", ErrInvalidParallelism, c.Download.Parallelism)
	}
	if c.Download.RateLimit < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRateLimit, c.Download.RateLimit)
	}
	if strings.TrimSpace(c.Download.Dir) == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidDownloadDir)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}

	return nil
}
