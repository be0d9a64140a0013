package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
)

// FileSystem abstracts the file operations of the loader.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem uses the real file system and godotenv.
type OSFileSystem struct{}

// Exists reports whether path can be stat'ed.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads path into the process environment without overriding
// variables that are already set.
func (OSFileSystem) LoadEnv(path string) error { return godotenv.Load(path) }

// LoaderConfig holds the loader dependencies and overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	// EnvPrefix limits environment binding to variables with this prefix.
	// Defaults to the upper-cased service name with dashes as underscores.
	EnvPrefix string
}

// LoaderOption customises LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets the file system used to find and load files.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit YAML file.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// Files are the resolved config and env file paths. Empty means none.
type Files struct {
	ConfigFile string
	EnvFile    string
}

// Resolver finds config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// Resolve returns explicit paths from lc, searching for the rest.
func (r *Resolver) Resolve(service string, lc LoaderConfig) Files {
	files := Files{ConfigFile: lc.ConfigFile, EnvFile: lc.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(configCandidates(service))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(envCandidates(service))
	}
	return files
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configCandidates(service string) []string {
	return []string{
		filepath.Join("cmd", service, "config.yml"),
		filepath.Join("config", service+".yml"),
		filepath.Join("config", "config.yml"),
		"config.yml",
	}
}

func envCandidates(service string) []string {
	return []string{
		filepath.Join("cmd", service, ".env"),
		".env." + service,
		".env",
	}
}

// Load reads a Config for service, applies defaults and validates it.
func Load(service string, opts ...LoaderOption) (*Config, error) {
	cfg := &Config{Name: service}
	if err := LoadConfig(service, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig unmarshals YAML, .env and environment values for service into
// cfg, which must be a pointer to a struct with mapstructure tags. Missing
// files are not an error.
func LoadConfig(service string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = OSFileSystem{}
	}
	if lc.EnvPrefix == "" {
		lc.EnvPrefix = envPrefix(service)
	}
	log := logger.Get("config")

	files := (&Resolver{FileSystem: lc.FileSystem}).Resolve(service, lc)
	v := viper.New()

	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return apierrors.Wrap(apierrors.KindInvalidConfig, "read config file", err).
				WithOp("config.load").WithDetail("file", files.ConfigFile)
		}
		log.Debug("config file loaded", logger.Fields("file", files.ConfigFile))
	}
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load env file", logger.MergeWithError(logger.Fields("file", files.EnvFile), err))
		}
	}
	bindEnv(v, lc.EnvPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return apierrors.Wrap(apierrors.KindInvalidConfig, fmt.Sprintf("decode config for %s", service), err).
			WithOp("config.load")
	}
	return nil
}

func envPrefix(service string) string {
	return strings.ToUpper(strings.ReplaceAll(service, "-", "_"))
}

// bindEnv sets every PREFIX_* variable under each nested key it could name.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	p := prefix + "_"
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, p) {
			continue
		}
		for _, k := range keyVariants(strings.TrimPrefix(key, p)) {
			v.Set(k, value)
		}
	}
}

// maxKeyParts bounds the variants generated for one variable.
const maxKeyParts = 8

// keyVariants maps an env suffix onto every dotted key it may address by
// treating each underscore as either a nesting dot or part of a name.
//
//	RATE_LIMIT_RATE -> rate_limit_rate, rate.limit_rate, rate_limit.rate, rate.limit.rate
func keyVariants(suffix string) []string {
	parts := strings.Split(strings.ToLower(suffix), "_")
	if len(parts) == 1 || len(parts) > maxKeyParts {
		return []string{strings.Join(parts, "_")}
	}
	seps := len(parts) - 1
	variants := make([]string, 0, 1<<seps)
	var b strings.Builder
	for mask := 0; mask < 1<<seps; mask++ {
		b.Reset()
		b.WriteString(parts[0])
		for i := 1; i < len(parts); i++ {
			if mask&(1<<(i-1)) != 0 {
				b.WriteByte('.')
			} else {
				b.WriteByte('_')
			}
			b.WriteString(parts[i])
		}
		variants = append(variants, b.String())
	}
	return variants
}
