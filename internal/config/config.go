// Package config loads the layered configuration: defaults, then an optional
// YAML file, then HARMONIX_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Configuration is the complete runtime configuration.
type Configuration struct {
	Global     GlobalConfig     `yaml:"global"`
	Storage    StorageConfig    `yaml:"storage"`
	Capture    CaptureConfig    `yaml:"capture"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// GlobalConfig holds process-wide settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"`
}

// StorageConfig holds object-store settings.
type StorageConfig struct {
	Bucket         string        `yaml:"bucket"`
	Region         string        `yaml:"region"`
	Endpoint       string        `yaml:"endpoint"`
	Namespace      string        `yaml:"namespace"`
	ForcePathStyle bool          `yaml:"force_path_style"`
	MaxRetries     int           `yaml:"max_retries"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PresignTTL     time.Duration `yaml:"presign_ttl"`
}

// CaptureConfig holds the annotation poll-loop timing contract.
type CaptureConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	PollTimeout  time.Duration `yaml:"poll_timeout"`
}

// MonitoringConfig holds metrics exposure settings.
type MonitoringConfig struct {
	MetricsEnabled bool `yaml:"metrics_enabled"`
	MetricsPort    int  `yaml:"metrics_port"`
}

// NewDefault returns the default configuration.
func NewDefault() *Configuration {
	return &Configuration{
		Global: GlobalConfig{
			LogLevel: "info",
		},
		Storage: StorageConfig{
			Bucket:         "azri.us-data",
			Region:         "us-east-1",
			Namespace:      "geovision",
			MaxRetries:     3,
			RequestTimeout: 30 * time.Second,
			PresignTTL:     15 * time.Minute,
		},
		Capture: CaptureConfig{
			PollInterval: time.Second,
			PollTimeout:  10 * time.Second,
		},
		Monitoring: MonitoringConfig{
			MetricsEnabled: false,
			MetricsPort:    9090,
		},
	}
}

// LoadFromFile overlays YAML settings from path onto c.
func (c *Configuration) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// LoadFromEnv overlays HARMONIX_* environment variables onto c.
func (c *Configuration) LoadFromEnv() {
	setString(&c.Global.LogLevel, "HARMONIX_LOG_LEVEL")
	setString(&c.Storage.Bucket, "HARMONIX_BUCKET")
	setString(&c.Storage.Region, "HARMONIX_REGION")
	setString(&c.Storage.Endpoint, "HARMONIX_ENDPOINT")
	setString(&c.Storage.Namespace, "HARMONIX_NAMESPACE")
	setBool(&c.Storage.ForcePathStyle, "HARMONIX_FORCE_PATH_STYLE")
	setInt(&c.Storage.MaxRetries, "HARMONIX_MAX_RETRIES")
	setDuration(&c.Storage.RequestTimeout, "HARMONIX_REQUEST_TIMEOUT")
	setDuration(&c.Storage.PresignTTL, "HARMONIX_PRESIGN_TTL")
	setDuration(&c.Capture.PollInterval, "HARMONIX_POLL_INTERVAL")
	setDuration(&c.Capture.PollTimeout, "HARMONIX_POLL_TIMEOUT")
	setBool(&c.Monitoring.MetricsEnabled, "HARMONIX_METRICS_ENABLED")
	setInt(&c.Monitoring.MetricsPort, "HARMONIX_METRICS_PORT")
}

// Validate checks the configuration for contradictions.
func (c *Configuration) Validate() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket cannot be empty")
	}
	if c.Storage.Region == "" {
		return fmt.Errorf("storage.region cannot be empty")
	}
	if c.Storage.Namespace == "" {
		return fmt.Errorf("storage.namespace cannot be empty")
	}
	if c.Capture.PollInterval <= 0 {
		return fmt.Errorf("capture.poll_interval must be positive")
	}
	if c.Capture.PollTimeout < c.Capture.PollInterval {
		return fmt.Errorf("capture.poll_timeout (%s) cannot be shorter than poll_interval (%s)",
			c.Capture.PollTimeout, c.Capture.PollInterval)
	}
	if c.Monitoring.MetricsEnabled && (c.Monitoring.MetricsPort < 1 || c.Monitoring.MetricsPort > 65535) {
		return fmt.Errorf("monitoring.metrics_port out of range: %d", c.Monitoring.MetricsPort)
	}
	switch c.Global.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("global.log_level must be one of debug, info, warn, error: %q", c.Global.LogLevel)
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, env string) {
	if v := os.Getenv(env); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, env string) {
	if v := os.Getenv(env); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
