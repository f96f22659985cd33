package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wascc/lattice-client/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lattice.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	loader := NewLoader()

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "nats://127.0.0.1:4222", cfg.BusURL)
	assert.Equal(t, int64(DefaultRPCTimeoutMillis), cfg.RPCTimeoutMillis)
	assert.Equal(t, 600*time.Millisecond, cfg.RPCTimeout())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FileLayerOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{"bus_url": "nats://lattice.example.com:4222", "rpc_timeout_ms": 1500}`)

	loader := NewLoader()
	loader.AddLayer(path)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "nats://lattice.example.com:4222", cfg.BusURL)
	assert.Equal(t, int64(1500), cfg.RPCTimeoutMillis)
	assert.Equal(t, "info", cfg.LogLevel, "unset fields keep defaults")
}

func TestLoad_LaterLayerWins(t *testing.T) {
	base := writeConfig(t, `{"bus_url": "nats://base:4222", "log_level": "debug"}`)
	override := filepath.Join(t.TempDir(), "override.json")
	require.NoError(t, os.WriteFile(override, []byte(`{"bus_url": "nats://override:4222"}`), 0o600))

	loader := NewLoader()
	loader.AddLayer(base)
	loader.AddLayer(override)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "nats://override:4222", cfg.BusURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	path := writeConfig(t, `{"bus_url": "nats://fromfile:4222"}`)
	t.Setenv("LATTICE_HOST", "lattice.example.com")
	t.Setenv("LATTICE_RPC_TIMEOUT_MILLIS", "250")
	t.Setenv("LATTICE_LOG_LEVEL", "warn")

	loader := NewLoader()
	loader.AddLayer(path)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "nats://lattice.example.com:4222", cfg.BusURL)
	assert.Equal(t, 250*time.Millisecond, cfg.RPCTimeout())
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	loader := NewLoader()
	loader.AddLayer(filepath.Join(t.TempDir(), "nope.json"))

	_, err := loader.Load()
	assert.ErrorIs(t, err, errors.ErrConfigNotFound)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, `{"bus_url": `)

	loader := NewLoader()
	loader.AddLayer(path)

	_, err := loader.Load()
	assert.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults are valid", func(*Config) {}, nil},
		{"empty bus URL", func(c *Config) { c.BusURL = "" }, errors.ErrMissingConfig},
		{"URL without scheme", func(c *Config) { c.BusURL = "localhost:4222" }, errors.ErrInvalidConfig},
		{"zero timeout", func(c *Config) { c.RPCTimeoutMillis = 0 }, errors.ErrInvalidConfig},
		{"negative timeout", func(c *Config) { c.RPCTimeoutMillis = -5 }, errors.ErrInvalidConfig},
		{"metrics port out of range", func(c *Config) { c.MetricsPort = 70000 }, errors.ErrInvalidConfig},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, errors.ErrInvalidConfig},
		{"missing creds file", func(c *Config) { c.CredsFile = "/does/not/exist.creds" }, errors.ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeHostURL(t *testing.T) {
	assert.Equal(t, "nats://10.0.0.5:4222", NormalizeHostURL("10.0.0.5"))
	assert.Equal(t, "nats://10.0.0.5:5222", NormalizeHostURL("10.0.0.5:5222"))
	assert.Equal(t, "tls://lattice:4222", NormalizeHostURL("tls://lattice:4222"))
}
