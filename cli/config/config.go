package config

import (
	"fmt"
	"time"
)

// Config represents a facet.yaml configuration file.
// All values are optional and act as defaults for facet command flags.
// CLI flags always override config values.
type Config struct {
	Filename    string          `yaml:"filename"`
	ResolveFrom string          `yaml:"resolve_from"`
	DevServer   DevServerConfig `yaml:"dev_server"`
	Poll        PollConfig      `yaml:"poll"`
	S3          S3Config        `yaml:"s3"`
	Cache       CacheConfig     `yaml:"cache"`
	Notify      NotifyConfig    `yaml:"notify"`
}

// DevServerConfig holds dev-server defaults from the config file.
type DevServerConfig struct {
	URL          string   `yaml:"url"`
	InjectBundle bool     `yaml:"inject_bundle"`
	Timeout      Duration `yaml:"timeout,omitempty"`
}

// PollConfig holds dev-mode retry defaults from the config file.
type PollConfig struct {
	InitialBackoff Duration `yaml:"initial_backoff"`
	Multiplier     float64  `yaml:"multiplier"`
	MaxInvalid     int      `yaml:"max_invalid"`
}

// S3Config holds S3 source defaults from the config file.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// CacheConfig holds shared-cache defaults from the config file.
type CacheConfig struct {
	URL string   `yaml:"url"`
	TTL Duration `yaml:"ttl,omitempty"`
}

// NotifyConfig holds readiness notifier defaults from the config file.
type NotifyConfig struct {
	Type    string            `yaml:"type"` // webhook or redis
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks cross-field constraints the YAML schema cannot express.
func (c *Config) Validate() error {
	if c.DevServer.URL != "" && c.S3.Bucket != "" {
		return fmt.Errorf("dev_server.url and s3.bucket are mutually exclusive")
	}
	if c.Poll.Multiplier != 0 && c.Poll.Multiplier < 1 {
		return fmt.Errorf("poll.multiplier must be >= 1, got %v", c.Poll.Multiplier)
	}
	if c.Poll.MaxInvalid < 0 {
		return fmt.Errorf("poll.max_invalid must be >= 0, got %d", c.Poll.MaxInvalid)
	}
	switch c.Notify.Type {
	case "", "webhook", "redis":
	default:
		return fmt.Errorf("notify.type must be webhook or redis, got %q", c.Notify.Type)
	}
	return nil
}
