package config

import (
	"github.com/kbukum/apikit/client"
	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/validation"
)

// Environments accepted by Config.Validate.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config is the configuration of a process using apikit.
//
//	type MyConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Billing BillingConfig `yaml:"billing" mapstructure:"billing"`
//	}
type Config struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
	Client      client.Config `yaml:"client" mapstructure:"client"`

	// Tracing enables OTLP trace export when set.
	Tracing *observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	// Metrics enables OTLP metric export when set.
	Metrics *observability.MeterConfig `yaml:"metrics" mapstructure:"metrics"`
}

// GetConfig returns c. Embedding structs inherit it.
func (c *Config) GetConfig() *Config { return c }

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.Environment == EnvDevelopment {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Client.ApplyDefaults()
	if c.Tracing != nil {
		fillService(&c.Tracing.ServiceName, &c.Tracing.ServiceVersion, &c.Tracing.Environment, c)
	}
	if c.Metrics != nil {
		fillService(&c.Metrics.ServiceName, &c.Metrics.ServiceVersion, &c.Metrics.Environment, c)
	}
}

func fillService(name, version, env *string, c *Config) {
	if *name == "" {
		*name = c.Name
	}
	if *version == "" {
		*version = c.Version
	}
	if *env == "" {
		*env = c.Environment
	}
}

// Validate checks the configuration. Call ApplyDefaults first.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return apierrors.Wrap(apierrors.KindInvalidConfig, "invalid logging config", err).
			WithOp("config.validate")
	}
	return c.Client.Validate()
}

// NewLogger returns a logger configured from Logging.
func (c *Config) NewLogger() *logger.Logger {
	return logger.New(&c.Logging, c.Name)
}

// NewClient creates a client from the Client section. A logger built from
// Logging is used unless opts set one.
func (c *Config) NewClient(opts ...client.Option) (*client.Client, error) {
	opts = append([]client.Option{client.WithLogger(c.NewLogger().WithComponent("client"))}, opts...)
	return client.New(c.Client, opts...)
}
