// Package validation checks configuration values before a client is built.
//
// It supports struct tag validation (using go-playground/validator) and
// programmatic validation with error collection. Both report an
// INVALID_CONFIG error listing every offending field.
//
// # Struct Tag Validation
//
//	type Upstream struct {
//	    BaseURL string        `mapstructure:"base_url" validate:"required,url"`
//	    Path    string        `mapstructure:"path" validate:"format"`
//	    Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
//
// The custom "format" tag accepts strings that parse as placeholder
// templates.
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Min("retries", cfg.Retries, 1)
//	err := v.Err()
package validation
