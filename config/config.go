// Package config loads the healthd configuration file.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/secret"
)

// Default configuration constants.
const (
	DefaultListen          = ":8080"
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultCheckTimeout    = 10 * time.Second
	DefaultServiceName     = "healthd"
)

// Configuration errors.
var (
	ErrConfigNotFound = errors.New("config: file not found")
	ErrParse          = errors.New("config: parse failed")
	ErrInvalid        = errors.New("config: invalid configuration")
)

// Config holds the complete healthd configuration.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Observe   observe.Config   `yaml:"observe"`
	Checks    ChecksConfig     `yaml:"checks"`
	Endpoints []EndpointConfig `yaml:"endpoints"`
	Circuits  []CircuitConfig  `yaml:"circuits"`
	Redis     []RedisProbe     `yaml:"redis"`
	Mongo     []MongoProbe     `yaml:"mongo"`
	Auth      AuthConfig       `yaml:"auth"`
	Secrets   SecretsConfig    `yaml:"secrets"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ChecksConfig configures the check executor.
type ChecksConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	MaxConcurrency int           `yaml:"max_concurrency"`

	// Memory registers a heap usage check when set.
	Memory *MemoryProbe `yaml:"memory"`
}

// MemoryProbe configures the heap usage check. Zero thresholds use the
// checker defaults.
type MemoryProbe struct {
	Name     string   `yaml:"name"`
	Warning  float64  `yaml:"warning"`
	Critical float64  `yaml:"critical"`
	MaxAlloc uint64   `yaml:"max_alloc"`
	Tags     []string `yaml:"tags"`
}

// EndpointConfig describes one health endpoint.
type EndpointConfig struct {
	Path string `yaml:"path"`

	// Names selects checks; empty runs every registered check.
	Names []string `yaml:"names"`

	// Format is "text" (status name) or "json" (detailed report).
	Format string `yaml:"format"`

	// StatusCodes maps status names (Healthy, Degraded, Unhealthy) to HTTP
	// codes. Empty uses the defaults.
	StatusCodes map[string]int `yaml:"status_codes"`

	AllowCaching bool `yaml:"allow_caching"`

	// Auth requires an authenticated caller.
	Auth bool `yaml:"auth"`
}

// CircuitConfig declares a circuit breaker. Each breaker is also
// registered as a health check under its name.
type CircuitConfig struct {
	Name                string        `yaml:"name"`
	MaxFailures         int           `yaml:"max_failures"`
	ResetTimeout        time.Duration `yaml:"reset_timeout"`
	HalfOpenMaxRequests int           `yaml:"half_open_max_requests"`
	Tags                []string      `yaml:"tags"`
}

// ProbeConfig holds settings shared by dependency probes.
type ProbeConfig struct {
	Name          string        `yaml:"name"`
	Timeout       time.Duration `yaml:"timeout"`
	SlowThreshold time.Duration `yaml:"slow_threshold"`
	// MaxConcurrent caps in-flight probes against the dependency; 0 is unbounded.
	MaxConcurrent int `yaml:"max_concurrent"`
	// Circuit names a CircuitConfig that guards the probe.
	Circuit string   `yaml:"circuit"`
	Tags    []string `yaml:"tags"`
}

// RedisProbe configures a Redis ping check.
type RedisProbe struct {
	ProbeConfig `yaml:",inline"`
	Addr        string `yaml:"addr"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
}

// MongoProbe configures a MongoDB ping check.
type MongoProbe struct {
	ProbeConfig `yaml:",inline"`
	URI         string `yaml:"uri"`
}

// AuthConfig configures callers allowed on endpoints with auth enabled.
type AuthConfig struct {
	APIKeys       []APIKey        `yaml:"api_keys"`
	KeyStore      *KeyStoreConfig `yaml:"key_store"`
	JWT           *JWTConfig      `yaml:"jwt"`
	RequiredRoles []string        `yaml:"required_roles"`
}

// KeyStoreConfig points at a Redis server holding API key records, for
// keys rotated without a restart. It is consulted after APIKeys.
type KeyStoreConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Prefix namespaces the records. Default: "healthops:apikey:"
	Prefix string `yaml:"prefix"`
}

// APIKey is a plaintext key; it is hashed when the server starts.
type APIKey struct {
	ID        string   `yaml:"id"`
	Key       string   `yaml:"key"`
	Principal string   `yaml:"principal"`
	Roles     []string `yaml:"roles"`
}

// JWTConfig configures bearer token validation. Exactly one of Secret or
// JWKSURL must be set.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	JWKSURL    string        `yaml:"jwks_url"`
	Issuer     string        `yaml:"issuer"`
	Audience   string        `yaml:"audience"`
	RolesClaim string        `yaml:"roles_claim"`
	Leeway     time.Duration `yaml:"leeway"`
}

// Enabled reports whether any authenticator is configured.
func (a AuthConfig) Enabled() bool {
	return len(a.APIKeys) > 0 || a.KeyStore != nil || a.JWT != nil
}

// SecretsConfig configures secretref resolution.
type SecretsConfig struct {
	// Dir enables secretref:file:<name> references below this directory.
	Dir string `yaml:"dir"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:          DefaultListen,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Observe: observe.Config{
			ServiceName: DefaultServiceName,
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
		Checks: ChecksConfig{Timeout: DefaultCheckTimeout},
		Endpoints: []EndpointConfig{
			{Path: "/readyz", Format: FormatText},
			{Path: "/health", Format: FormatJSON},
		},
	}
}

// Load reads, resolves and validates the configuration at path.
func Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(ctx, bytes.NewReader(data))
}

// Parse decodes YAML over the defaults, resolves environment variables and
// secret references, then validates the result. Unknown keys are rejected.
func Parse(ctx context.Context, r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if err := cfg.resolve(ctx); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolve(ctx context.Context) error {
	dir, err := secret.ExpandEnvStrict(c.Secrets.Dir)
	if err != nil {
		return fmt.Errorf("config: secrets.dir: %w", err)
	}
	c.Secrets.Dir = dir

	resolver := secret.NewResolver(true)
	if dir != "" {
		files, err := secret.NewFileProvider(dir)
		if err != nil {
			return fmt.Errorf("config: secrets.dir: %w", err)
		}
		resolver.Register(files)
	}
	defer func() { _ = resolver.Close() }()

	fields := []*string{&c.Server.Listen}
	for i := range c.Redis {
		fields = append(fields, &c.Redis[i].Addr, &c.Redis[i].Password)
	}
	for i := range c.Mongo {
		fields = append(fields, &c.Mongo[i].URI)
	}
	for i := range c.Auth.APIKeys {
		fields = append(fields, &c.Auth.APIKeys[i].Key)
	}
	if c.Auth.KeyStore != nil {
		fields = append(fields, &c.Auth.KeyStore.Addr, &c.Auth.KeyStore.Password)
	}
	if c.Auth.JWT != nil {
		fields = append(fields, &c.Auth.JWT.Secret, &c.Auth.JWT.JWKSURL)
	}

	for _, f := range fields {
		if *f == "" {
			continue
		}
		v, err := resolver.ResolveValue(ctx, *f)
		if err != nil {
			return fmt.Errorf("config: resolve value: %w", err)
		}
		*f = v
	}
	return nil
}
