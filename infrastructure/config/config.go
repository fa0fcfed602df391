// Package config loads service configuration from defaults, an optional TOML
// file, CLOUDMAP_ environment variables and command-line flags, in that order
// of increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Environment represents the deployment environment
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Test        Environment = "test"
)

// DefaultPath is read when no config file is named explicitly
const DefaultPath = "cloudmap.toml"

// EnvPrefix prefixes every environment variable. Sections are separated by a
// double underscore: CLOUDMAP_STORE__BACKEND sets store.backend.
const EnvPrefix = "CLOUDMAP_"

// Store backends
const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
	StoreSQLite   = "sqlite"
)

// Model providers
const (
	ProviderBedrock = "bedrock"
	ProviderFixture = "fixture"
)

// Metrics sinks
const (
	SinkPrometheus = "prometheus"
	SinkCloudWatch = "cloudwatch"
)

// Config holds all application configuration
type Config struct {
	Environment Environment     `koanf:"environment"`
	Server      ServerConfig    `koanf:"server"`
	Log         LogConfig       `koanf:"log"`
	Store       StoreConfig     `koanf:"store"`
	AWS         AWSConfig       `koanf:"aws"`
	Model       ModelConfig     `koanf:"model"`
	Breaker     BreakerConfig   `koanf:"breaker"`
	Events      EventsConfig    `koanf:"events"`
	Metrics     MetricsConfig   `koanf:"metrics"`
	Tracing     TracingConfig   `koanf:"tracing"`
	CORS        CORSConfig      `koanf:"cors"`
	RateLimit   RateLimitConfig `koanf:"ratelimit"`

	// Path is the config file that was loaded, empty if none
	Path string `koanf:"-"`
}

type ServerConfig struct {
	Address string `koanf:"address"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// StoreConfig selects the record store. Table is used by dynamodb, Path by sqlite.
type StoreConfig struct {
	Backend string `koanf:"backend"`
	Table   string `koanf:"table"`
	Path    string `koanf:"path"`
}

type AWSConfig struct {
	Region string `koanf:"region"`
}

// ModelConfig configures the generative model client
type ModelConfig struct {
	Provider    string        `koanf:"provider"`
	ID          string        `koanf:"id"`
	MaxTokens   int           `koanf:"max_tokens"`
	Temperature float64       `koanf:"temperature"`
	Timeout     time.Duration `koanf:"timeout"`
	Fixtures    string        `koanf:"fixtures"`
}

// BreakerConfig configures the circuit breaker around the model provider
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	FailureRatio float64       `koanf:"failure_ratio"`
	MinRequests  uint32        `koanf:"min_requests"`
}

type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	BusName string `koanf:"bus_name"`
}

type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Sink      string `koanf:"sink"`
	Namespace string `koanf:"namespace"`
}

type TracingConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Endpoint string `koanf:"endpoint"`
}

type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

// RateLimitConfig limits model-invoking requests per client
type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"environment":           string(Development),
		"server.address":        ":8080",
		"log.level":             "info",
		"store.backend":         StoreMemory,
		"store.table":           "",
		"store.path":            "",
		"aws.region":            "us-east-1",
		"model.provider":        ProviderFixture,
		"model.id":              "anthropic.claude-3-5-sonnet-20240620-v1:0",
		"model.max_tokens":      4096,
		"model.temperature":     0.2,
		"model.timeout":         "90s",
		"model.fixtures":        "",
		"breaker.max_requests":  5,
		"breaker.interval":      "30s",
		"breaker.timeout":       "60s",
		"breaker.failure_ratio": 0.8,
		"breaker.min_requests":  5,
		"events.enabled":        false,
		"events.bus_name":       "cloudmap-events",
		"metrics.enabled":       true,
		"metrics.sink":          SinkPrometheus,
		"metrics.namespace":     "CloudMap",
		"tracing.enabled":       false,
		"tracing.endpoint":      "localhost:4317",
		"cors.origins":          []string{"*"},
		"ratelimit.requests":    10,
		"ratelimit.window":      "1m",
	}
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"addr":      "server.address",
	"log-level": "log.level",
	"store":     "store.backend",
	"db":        "store.path",
	"table":     "store.table",
	"provider":  "model.provider",
	"model":     "model.id",
	"fixtures":  "model.fixtures",
	"env":       "environment",
}

// mapProvider feeds an in-memory map to koanf
type mapProvider struct {
	m map[string]interface{}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Load builds the configuration. An explicitly named file must exist; the
// default file is optional. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&mapProvider{m: defaults()}, nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	loaded := ""
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		loaded = path
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, f.Value.String()
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Path = loaded

	return &cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case Development, Production, Test:
	default:
		errs = append(errs, fmt.Errorf("environment must be one of development, production, test; got %q", c.Environment))
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreDynamoDB:
		if c.Store.Table == "" {
			errs = append(errs, errors.New("store.table is required for the dynamodb backend"))
		}
	case StoreSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}

	switch c.Model.Provider {
	case ProviderBedrock:
		if c.Model.ID == "" {
			errs = append(errs, errors.New("model.id is required for the bedrock provider"))
		}
	case ProviderFixture:
	default:
		errs = append(errs, fmt.Errorf("unknown model.provider %q", c.Model.Provider))
	}
	if c.Model.Timeout <= 0 {
		errs = append(errs, errors.New("model.timeout must be positive"))
	}
	if c.Model.MaxTokens <= 0 {
		errs = append(errs, errors.New("model.max_tokens must be positive"))
	}

	if c.Metrics.Enabled {
		switch c.Metrics.Sink {
		case SinkPrometheus, SinkCloudWatch:
		default:
			errs = append(errs, fmt.Errorf("unknown metrics.sink %q", c.Metrics.Sink))
		}
	}

	if c.Events.Enabled && c.Events.BusName == "" {
		errs = append(errs, errors.New("events.bus_name is required when events are enabled"))
	}

	if c.RateLimit.Requests < 0 || (c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("ratelimit.window must be positive when ratelimit.requests is set"))
	}

	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		errs = append(errs, errors.New("breaker.failure_ratio must be in (0, 1]"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// NeedsAWS reports whether any enabled component talks to AWS
func (c *Config) NeedsAWS() bool {
	return c.Store.Backend == StoreDynamoDB ||
		c.Model.Provider == ProviderBedrock ||
		c.Events.Enabled ||
		(c.Metrics.Enabled && c.Metrics.Sink == SinkCloudWatch)
}
