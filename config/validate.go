package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/healthops/health"
)

// Endpoint response formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ResultStatusCodes converts the endpoint's status names to a status code
// map. It returns nil when no codes are configured, which selects the
// defaults. A partial map is returned as is; an unmapped status fails at
// request time.
func (e EndpointConfig) ResultStatusCodes() (map[health.Status]int, error) {
	codes, err := e.statusCodes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return codes, nil
}

func (e EndpointConfig) statusCodes() (map[health.Status]int, error) {
	if len(e.StatusCodes) == 0 {
		return nil, nil
	}
	codes := make(map[health.Status]int, len(e.StatusCodes))
	for name, code := range e.StatusCodes {
		status, err := health.ParseStatus(name)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", e.Path, err)
		}
		if code < 100 || code > 599 {
			return nil, fmt.Errorf("endpoint %s: status code %d out of range", e.Path, code)
		}
		codes[status] = code
	}
	return codes, nil
}

// Validate reports every problem in the configuration, joined under ErrInvalid.
func (c *Config) Validate() error {
	var errs []error

	errs = c.validateServer(errs)
	if err := c.Observe.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("observe: %w", err))
	}
	if c.Checks.Timeout <= 0 {
		errs = append(errs, errors.New("checks.timeout must be positive"))
	}
	if c.Checks.MaxConcurrency < 0 {
		errs = append(errs, errors.New("checks.max_concurrency must not be negative"))
	}
	errs = c.validateEndpoints(errs)
	errs = c.validateProbes(errs)
	errs = c.validateAuth(errs)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func (c *Config) validateServer(errs []error) []error {
	if c.Server.Listen == "" {
		errs = append(errs, errors.New("server.listen is required"))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	return errs
}

func (c *Config) validateEndpoints(errs []error) []error {
	seen := make(map[string]bool, len(c.Endpoints))
	for _, e := range c.Endpoints {
		switch {
		case !strings.HasPrefix(e.Path, "/"):
			errs = append(errs, fmt.Errorf("endpoint path %q must start with /", e.Path))
		case e.Path == "/healthz":
			errs = append(errs, errors.New("endpoint path /healthz is reserved for liveness"))
		case seen[e.Path]:
			errs = append(errs, fmt.Errorf("endpoint path %q is declared twice", e.Path))
		}
		seen[e.Path] = true

		if e.Format != FormatText && e.Format != FormatJSON {
			errs = append(errs, fmt.Errorf("endpoint %s: format must be text or json, got %q", e.Path, e.Format))
		}
		if _, err := e.statusCodes(); err != nil {
			errs = append(errs, err)
		}
		if e.Auth && !c.Auth.Enabled() {
			errs = append(errs, fmt.Errorf("endpoint %s requires auth but no authenticator is configured", e.Path))
		}
	}
	return errs
}

func (c *Config) validateProbes(errs []error) []error {
	circuits := make(map[string]bool, len(c.Circuits))
	for _, cc := range c.Circuits {
		if cc.Name == "" {
			errs = append(errs, errors.New("circuits: name is required"))
			continue
		}
		if circuits[cc.Name] {
			errs = append(errs, fmt.Errorf("circuit %q is declared twice", cc.Name))
		}
		circuits[cc.Name] = true
	}

	check := func(kind string, p ProbeConfig, target string) {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", kind))
		}
		if target == "" {
			errs = append(errs, fmt.Errorf("%s %q: address is required", kind, p.Name))
		}
		if p.MaxConcurrent < 0 {
			errs = append(errs, fmt.Errorf("%s %q: max_concurrent must not be negative", kind, p.Name))
		}
		if p.Circuit != "" && !circuits[p.Circuit] {
			errs = append(errs, fmt.Errorf("%s %q: unknown circuit %q", kind, p.Name, p.Circuit))
		}
	}
	if m := c.Checks.Memory; m != nil {
		for _, v := range []float64{m.Warning, m.Critical} {
			if v < 0 || v >= 1 {
				errs = append(errs, fmt.Errorf("checks.memory: threshold %v must be in [0, 1)", v))
			}
		}
	}
	for _, r := range c.Redis {
		check("redis", r.ProbeConfig, r.Addr)
	}
	for _, m := range c.Mongo {
		check("mongo", m.ProbeConfig, m.URI)
	}
	return errs
}

func (c *Config) validateAuth(errs []error) []error {
	for i, k := range c.Auth.APIKeys {
		if k.Key == "" || k.Principal == "" {
			errs = append(errs, fmt.Errorf("auth.api_keys[%d]: key and principal are required", i))
		}
	}
	if ks := c.Auth.KeyStore; ks != nil && ks.Addr == "" {
		errs = append(errs, errors.New("auth.key_store: addr is required"))
	}
	if j := c.Auth.JWT; j != nil && (j.Secret == "") == (j.JWKSURL == "") {
		errs = append(errs, errors.New("auth.jwt: exactly one of secret or jwks_url is required"))
	}
	return errs
}
