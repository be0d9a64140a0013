package client

import (
	"time"

	"github.com/kbukum/apikit/validation"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultStrategy = StrategyTokenBucket
)

// Rate limiter strategies.
const (
	// StrategyTokenBucket uses resilience.RateLimiter.
	StrategyTokenBucket = "token_bucket"
	// StrategyReservation uses golang.org/x/time/rate.
	StrategyReservation = "reservation"
)

// Config configures a Client.
type Config struct {
	// BaseURL is informational; endpoint records carry their own base URL.
	// When set, NewRequest resolves relative URLs against it.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// Timeout bounds a whole exchange on the underlying http.Client. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is sent on every request built by NewRequest.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Headers are default headers set by NewRequest.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// RateLimit configures the shared gate. Nil leaves sends unthrottled.
	RateLimit *RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	// Retries is the attempt budget of the default handler stack. Zero or
	// one disables retrying.
	Retries int `yaml:"retries" mapstructure:"retries" validate:"gte=0"`

	// RetryServerErrors turns 5xx and 429 responses into errors so they are
	// retried and counted by the circuit breaker.
	RetryServerErrors bool `yaml:"retry_server_errors" mapstructure:"retry_server_errors"`

	// CircuitBreaker enables a breaker in the default stack.
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`

	// MaxConcurrent caps in-flight sends. Zero means unlimited.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"gte=0"`

	// CookieJar keeps cookies between requests, scoped by public suffix.
	CookieJar bool `yaml:"cookie_jar" mapstructure:"cookie_jar"`

	// TLS configures the transport.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// RateLimitConfig configures the shared permit gate.
type RateLimitConfig struct {
	// Rate is permits per second.
	Rate float64 `yaml:"rate" mapstructure:"rate" validate:"gt=0"`
	// Burst is the bucket size. Defaults to 1.
	Burst int `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
	// Strategy selects the limiter implementation.
	Strategy string `yaml:"strategy" mapstructure:"strategy" validate:"omitempty,oneof=token_bucket reservation"`
}

// CircuitBreakerConfig configures the default circuit breaker.
type CircuitBreakerConfig struct {
	MaxFailures int           `yaml:"max_failures" mapstructure:"max_failures" validate:"gte=0"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RateLimit != nil {
		if c.RateLimit.Burst <= 0 {
			c.RateLimit.Burst = 1
		}
		if c.RateLimit.Strategy == "" {
			c.RateLimit.Strategy = defaultStrategy
		}
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New()
	if c.TLS != nil {
		v.Custom((c.TLS.CertFile != "") == (c.TLS.KeyFile != ""), "tls", "cert_file and key_file must be provided together")
	}
	return v.Err()
}
