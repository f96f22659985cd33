package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wascc/lattice-client/errors"
)

// Default values applied before any file or environment layer.
const (
	DefaultRPCTimeoutMillis = 600
	DefaultLogLevel         = "info"
	DefaultClientName       = "lattice-client"
)

// EnvPrefix is the prefix for all environment overrides.
const EnvPrefix = "LATTICE"

// Config is the complete client configuration: where the bus is, how to
// authenticate, and how long to wait for scattered replies.
type Config struct {
	// BusURL is the NATS server URL, e.g. nats://localhost:4222.
	BusURL string `json:"bus_url"`

	// Credentials. CredsFile wins over Token, which wins over
	// Username/Password; leave all empty for an unauthenticated bus.
	CredsFile string `json:"creds_file,omitempty"`
	Token     string `json:"token,omitempty"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`

	// RPCTimeoutMillis is the default scatter-gather window.
	RPCTimeoutMillis int64 `json:"rpc_timeout_ms"`

	// MetricsPort exposes the Prometheus endpoint when non-zero.
	MetricsPort int `json:"metrics_port,omitempty"`

	LogLevel   string `json:"log_level,omitempty"`
	ClientName string `json:"client_name,omitempty"`
}

// Default returns the built-in configuration: a local unauthenticated bus.
func Default() *Config {
	return &Config{
		BusURL:           nats.DefaultURL,
		RPCTimeoutMillis: DefaultRPCTimeoutMillis,
		LogLevel:         DefaultLogLevel,
		ClientName:       DefaultClientName,
	}
}

// RPCTimeout returns the scatter-gather window as a duration.
func (c *Config) RPCTimeout() time.Duration {
	return time.Duration(c.RPCTimeoutMillis) * time.Millisecond
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.BusURL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "bus URL required")
	}
	if !strings.Contains(c.BusURL, "://") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("bus URL %q has no scheme", c.BusURL))
	}
	if c.RPCTimeoutMillis <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "rpc timeout must be positive")
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("metrics port %d out of range", c.MetricsPort))
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown log level %q", c.LogLevel))
	}
	if c.CredsFile != "" {
		if _, err := os.Stat(c.CredsFile); err != nil {
			return errors.WrapInvalid(errors.ErrConfigNotFound, "Config", "Validate",
				fmt.Sprintf("creds file %s", c.CredsFile))
		}
	}
	return nil
}

// Loader assembles a Config from layers: built-in defaults, then JSON files
// in the order added, then LATTICE_* environment overrides, then validation.
type Loader struct {
	layers    []string
	envPrefix string
	validate  bool
}

// NewLoader creates a loader with defaults and env overrides enabled.
func NewLoader() *Loader {
	return &Loader{envPrefix: EnvPrefix, validate: true}
}

// AddLayer appends a JSON config file. Later layers override earlier ones;
// a missing file is an error, so only add layers that should exist.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation toggles final validation; tests for partial configs turn
// it off.
func (l *Loader) EnableValidation(enable bool) {
	l.validate = enable
}

// Load assembles the configuration from all layers.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	for _, path := range l.layers {
		layer, err := l.loadFile(path)
		if err != nil {
			return nil, err
		}
		merge(cfg, layer)
	}

	l.applyEnvOverrides(cfg)

	if l.validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapInvalid(errors.ErrConfigNotFound, "Loader", "Load", path)
		}
		return nil, errors.Wrap(err, "Loader", "Load", "read "+path)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "Load", "parse "+path)
	}
	return &cfg, nil
}

// merge overlays non-zero fields of the layer onto the base.
func merge(base, layer *Config) {
	if layer.BusURL != "" {
		base.BusURL = layer.BusURL
	}
	if layer.CredsFile != "" {
		base.CredsFile = layer.CredsFile
	}
	if layer.Token != "" {
		base.Token = layer.Token
	}
	if layer.Username != "" {
		base.Username = layer.Username
	}
	if layer.Password != "" {
		base.Password = layer.Password
	}
	if layer.RPCTimeoutMillis != 0 {
		base.RPCTimeoutMillis = layer.RPCTimeoutMillis
	}
	if layer.MetricsPort != 0 {
		base.MetricsPort = layer.MetricsPort
	}
	if layer.LogLevel != "" {
		base.LogLevel = layer.LogLevel
	}
	if layer.ClientName != "" {
		base.ClientName = layer.ClientName
	}
}

// applyEnvOverrides applies LATTICE_* variables on top of all file layers.
// LATTICE_HOST and LATTICE_CREDS_FILE match what responder hosts already
// read, so one environment configures both sides of the bus.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(l.envPrefix + "_HOST"); val != "" {
		cfg.BusURL = NormalizeHostURL(val)
	}
	if val := os.Getenv(l.envPrefix + "_CREDS_FILE"); val != "" {
		cfg.CredsFile = val
	}
	if val := os.Getenv(l.envPrefix + "_TOKEN"); val != "" {
		cfg.Token = val
	}
	if val := os.Getenv(l.envPrefix + "_USERNAME"); val != "" {
		cfg.Username = val
	}
	if val := os.Getenv(l.envPrefix + "_PASSWORD"); val != "" {
		cfg.Password = val
	}
	if val := os.Getenv(l.envPrefix + "_RPC_TIMEOUT_MILLIS"); val != "" {
		if ms, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.RPCTimeoutMillis = ms
		}
	}
	if val := os.Getenv(l.envPrefix + "_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.MetricsPort = port
		}
	}
	if val := os.Getenv(l.envPrefix + "_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
}

// NormalizeHostURL accepts the bare host form hosts use (LATTICE_HOST=10.0.0.5)
// as well as full URLs.
func NormalizeHostURL(val string) string {
	if strings.Contains(val, "://") {
		return val
	}
	if !strings.Contains(val, ":") {
		val += ":4222"
	}
	return "nats://" + val
}
