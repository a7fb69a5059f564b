package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

const defaultPath = "configs/dns-provider.yaml"

// Config holds the DNS provider type, its connection settings and the
// tuning knobs of the migration pipeline.
type Config struct {
	Provider  string            `yaml:"provider"`
	Settings  map[string]string `yaml:"settings"`
	Zones     map[string]string `yaml:"zones"`
	Resolver  ResolverConfig    `yaml:"resolver"`
	Detection DetectionConfig   `yaml:"detection"`
	Import    ImportConfig      `yaml:"import"`
}

// ResolverConfig points at the public DNS-over-HTTPS resolver.
type ResolverConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// DetectionConfig controls how many resolver probes run at once.
type DetectionConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// ImportConfig controls how many record creations run at once.
type ImportConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// ResolverTimeout returns the parsed resolver timeout, zero when unset.
func (c *Config) ResolverTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Resolver.Timeout)
	return d
}

// ZoneMap returns the configured domain → zone id map.
func (c *Config) ZoneMap() *ZoneMap {
	return NewZoneMap(c.Zones)
}

// Load reads the configuration from the path specified by the
// DNS_PROVIDER_PATH environment variable, defaulting to
// "configs/dns-provider.yaml". When the variable is unset and the default
// file does not exist, the configuration is taken from the environment.
func Load() (*Config, error) {
	path := os.Getenv("DNS_PROVIDER_PATH")
	if path == "" {
		cfg, err := LoadFromPath(defaultPath)
		if errors.Is(err, fs.ErrNotExist) {
			return FromEnv(), nil
		}
		return cfg, err
	}
	return LoadFromPath(path)
}

// FromEnv builds a Cloudflare configuration from CLOUDFLARE_API_TOKEN,
// CLOUDFLARE_ZONE_ID and CLOUDFLARE_EMAIL. Missing values are left empty;
// the provider reports them when an operation needs them.
func FromEnv() *Config {
	settings := map[string]string{}
	for key, env := range map[string]string{
		"api_token":     "CLOUDFLARE_API_TOKEN",
		"zone_id":       "CLOUDFLARE_ZONE_ID",
		"account_email": "CLOUDFLARE_EMAIL",
	} {
		if v := os.Getenv(env); v != "" {
			settings[key] = v
		}
	}
	return &Config{Provider: "cloudflare", Settings: settings}
}

// LoadFromPath reads the configuration from the given file path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading provider config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing provider config file: %w", err)
	}

	if cfg.Provider == "" {
		return nil, fmt.Errorf("provider config: missing required field 'provider'")
	}
	if cfg.Resolver.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Resolver.Timeout); err != nil {
			return nil, fmt.Errorf("provider config: invalid resolver.timeout %q: %w", cfg.Resolver.Timeout, err)
		}
	}
	if cfg.Detection.Concurrency < 0 || cfg.Import.Concurrency < 0 {
		return nil, fmt.Errorf("provider config: concurrency must not be negative")
	}

	// Expand ${ENV_VAR} references in setting values.
	for k, v := range cfg.Settings {
		cfg.Settings[k] = os.ExpandEnv(v)
	}
	if cfg.Settings == nil {
		cfg.Settings = map[string]string{}
	}
	cfg.Resolver.URL = os.ExpandEnv(cfg.Resolver.URL)

	return &cfg, nil
}
