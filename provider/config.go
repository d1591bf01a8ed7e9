package provider

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Config holds configuration for creating a provider client.
type Config struct {
	// Provider is the name of the provider to use.
	// Required when resolving through the registry.
	Provider string `json:"provider" yaml:"provider"`

	// APIKey authenticates requests. Required by all bundled providers.
	APIKey string `json:"api_key" yaml:"api_key"`

	// BaseURL overrides the provider's default endpoint.
	// Useful for proxies, compatible gateways, and tests.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Models is the ordered list of candidate model names.
	// GetResponse tries each in order and returns on the first success;
	// the final candidate's error is propagated if all fail.
	// Empty means the provider's default candidates.
	Models []string `json:"models" yaml:"models"`

	// Timeout is the maximum duration for a single request attempt.
	// 0 uses the provider default.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries bounds internal retries for transient errors per attempt.
	// Retries use exponential backoff and always respect the caller's
	// context deadline. 0 means the default (2); negative disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// HTTPClient overrides the HTTP client used for requests.
	HTTPClient *http.Client `json:"-" yaml:"-"`
}

// DefaultTimeout is the per-attempt request timeout when none is configured.
const DefaultTimeout = 2 * time.Minute

// DefaultMaxRetries is the default bound on transient-error retries.
const DefaultMaxRetries = 2

// DefaultConfig returns a Config with sensible defaults.
// Provider and APIKey must still be set before use.
func DefaultConfig() Config {
	return Config{
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
	}
}

// LoadFromEnv populates config fields from environment variables.
// Variables use the ASKMANY_ prefix and take precedence over existing values:
//
//   - ASKMANY_PROVIDER: provider name
//   - ASKMANY_BASE_URL: endpoint override
//   - ASKMANY_TIMEOUT: per-attempt timeout (Go duration, e.g. "90s")
//   - ASKMANY_MAX_RETRIES: transient retry bound
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("ASKMANY_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("ASKMANY_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("ASKMANY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("ASKMANY_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	return nil
}

// EffectiveMaxRetries resolves the configured retry bound: 0 becomes the
// default, negatives mean no retries.
func (c Config) EffectiveMaxRetries() int {
	switch {
	case c.MaxRetries == 0:
		return DefaultMaxRetries
	case c.MaxRetries < 0:
		return 0
	default:
		return c.MaxRetries
	}
}

// WithProvider returns a copy of the config with the specified provider.
func (c Config) WithProvider(provider string) Config {
	c.Provider = provider
	return c
}

// WithAPIKey returns a copy of the config with the specified API key.
func (c Config) WithAPIKey(key string) Config {
	c.APIKey = key
	return c
}

// WithBaseURL returns a copy of the config with the specified base URL.
func (c Config) WithBaseURL(url string) Config {
	c.BaseURL = url
	return c
}

// WithModels returns a copy of the config with the specified candidates.
func (c Config) WithModels(models ...string) Config {
	c.Models = models
	return c
}
