// Package config loads the collaborator configuration the core consumes: a
// schema root path, a bound domain and version, and an ordered list of
// remote archive source URLs. The core itself never reads files or
// environment variables; it takes these values as plain inputs.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults match the reference deployment of the other Pacts
// implementations.
const (
	DefaultSchemaRoot = "schemas"
	DefaultDomain     = "bees"
	DefaultVersion    = "v1"

	DefaultConnectTimeout = 15 * time.Second
	DefaultReadTimeout    = 30 * time.Second
)

// ErrInvalidConfiguration is wrapped by all validation failures.
var ErrInvalidConfiguration = errors.New("config: invalid configuration")

// Config carries everything needed to construct a resolver and service.
type Config struct {
	// SchemaRoot is the filesystem directory holding schema trees.
	SchemaRoot string
	// Domain and Version bind the resolver's default coordinates.
	Domain  string
	Version string
	// SchemaSources is the ordered list of archive mirrors tried at
	// construction. Empty means no remote loading.
	SchemaSources []string
	// ConnectTimeout and ReadTimeout bound the archive fetch.
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// fileConfig is the YAML shape; durations are parsed from strings like
// "15s" so configs stay readable.
type fileConfig struct {
	SchemaRoot     string   `yaml:"schema_root"`
	Domain         string   `yaml:"domain"`
	Version        string   `yaml:"version"`
	SchemaSources  []string `yaml:"schema_sources"`
	ConnectTimeout string   `yaml:"connect_timeout"`
	ReadTimeout    string   `yaml:"read_timeout"`
}

// Default returns the configuration used when nothing is supplied.
func Default() *Config {
	return &Config{
		SchemaRoot:     DefaultSchemaRoot,
		Domain:         DefaultDomain,
		Version:        DefaultVersion,
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
	}
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML configuration, applying defaults for absent fields and
// validating the result.
func Parse(data []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: failed to parse: %w", err)
	}

	cfg := Default()
	if fc.SchemaRoot != "" {
		cfg.SchemaRoot = fc.SchemaRoot
	}
	if fc.Domain != "" {
		cfg.Domain = fc.Domain
	}
	if fc.Version != "" {
		cfg.Version = fc.Version
	}
	cfg.SchemaSources = fc.SchemaSources

	if fc.ConnectTimeout != "" {
		d, err := time.ParseDuration(fc.ConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("config: invalid connect_timeout: %w", err)
		}
		cfg.ConnectTimeout = d
	}
	if fc.ReadTimeout != "" {
		d, err := time.ParseDuration(fc.ReadTimeout)
		if err != nil {
			return nil, fmt.Errorf("config: invalid read_timeout: %w", err)
		}
		cfg.ReadTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields the resolver treats as fatal at construction.
func (c *Config) Validate() error {
	if c.SchemaRoot == "" {
		return fmt.Errorf("%w: schema_root must not be empty", ErrInvalidConfiguration)
	}
	if c.Domain == "" {
		return fmt.Errorf("%w: domain must not be empty", ErrInvalidConfiguration)
	}
	if c.Version == "" {
		return fmt.Errorf("%w: version must not be empty", ErrInvalidConfiguration)
	}
	for i, source := range c.SchemaSources {
		if source == "" {
			return fmt.Errorf("%w: schema_sources[%d] must not be empty", ErrInvalidConfiguration, i)
		}
	}
	if c.ConnectTimeout <= 0 || c.ReadTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfiguration)
	}
	return nil
}

// HTTPClient builds an HTTP client honoring the configured fetch timeouts:
// the dialer bounds connect time, the client deadline bounds the whole
// fetch.
func (c *Config) HTTPClient() *http.Client {
	return &http.Client{
		Timeout: c.ReadTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: c.ConnectTimeout,
			}).DialContext,
		},
	}
}
