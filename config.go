package toolgate

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from "1h30m" style strings in
// both YAML documents and environment variables.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used for env overrides.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is a serialisable representation of the gate configuration. It can
// be populated from YAML files and environment variables. The zero-value is
// useful since all nested fields inherit their package defaults.
type Config struct {
	Approval ApprovalConfig `json:"approval" yaml:"approval"`
	Executor ExecutorConfig `json:"executor" yaml:"executor"`
	Audit    AuditConfig    `json:"audit" yaml:"audit"`
	Policy   PolicyConfig   `json:"policy" yaml:"policy"`
}

type ApprovalConfig struct {
	// TTL bounds how long a queued action stays approvable.
	TTL Duration `json:"ttl" yaml:"ttl" env:"TOOLGATE_APPROVAL_TTL"`
	// SweepInterval drives the background expiry sweeper.
	SweepInterval Duration `json:"sweepInterval" yaml:"sweepInterval" env:"TOOLGATE_SWEEP_INTERVAL"`
}

type ExecutorConfig struct {
	Timeout Duration `json:"timeout" yaml:"timeout" env:"TOOLGATE_EXECUTOR_TIMEOUT"`
}

type AuditConfig struct {
	PreviewLimit int `json:"previewLimit" yaml:"previewLimit" env:"TOOLGATE_AUDIT_PREVIEW_LIMIT"`
}

type PolicyConfig struct {
	// PreferenceCacheTTL bounds staleness of cached user preferences.
	PreferenceCacheTTL Duration `json:"preferenceCacheTTL" yaml:"preferenceCacheTTL" env:"TOOLGATE_PREFERENCE_CACHE_TTL"`
}

// DefaultConfig returns a Config populated with the same defaults the
// individual sub-package constructors would apply on their own.
func DefaultConfig() *Config {
	return &Config{
		Approval: ApprovalConfig{
			TTL:           Duration(24 * time.Hour),
			SweepInterval: Duration(time.Minute),
		},
		Executor: ExecutorConfig{
			Timeout: Duration(time.Minute),
		},
		Audit: AuditConfig{
			PreviewLimit: 2048,
		},
		Policy: PolicyConfig{
			PreferenceCacheTTL: Duration(5 * time.Second),
		},
	}
}

// LoadConfig reads a YAML config from the supplied URL (any scheme the file
// system abstraction understands) and overlays environment variables on top.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	config := DefaultConfig()
	if URL != "" {
		fs := afs.New()
		data, err := fs.DownloadWithURL(ctx, URL)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
		}
	}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to apply config env overrides: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Approval.TTL < 0 {
		return fmt.Errorf("approval.ttl must not be negative")
	}
	if c.Approval.SweepInterval < 0 {
		return fmt.Errorf("approval.sweepInterval must not be negative")
	}
	if c.Executor.Timeout < 0 {
		return fmt.Errorf("executor.timeout must not be negative")
	}
	if c.Audit.PreviewLimit < 0 {
		return fmt.Errorf("audit.previewLimit must not be negative")
	}
	return nil
}
