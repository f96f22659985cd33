package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	BusURL        string
	CredsFile     string
	TimeoutMillis int64
	JSON          bool
	LogLevel      string
	LogFormat     string
	ShowVersion   bool
	ShowHelp      bool

	Command string
	Entity  string
}

func parseFlags(args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)

	fs.StringVar(&cfg.BusURL, "url",
		getEnv("LATTICE_HOST", "nats://127.0.0.1:4222"),
		"NATS server URL for the nearest lattice leaf node (env: LATTICE_HOST)")

	fs.StringVar(&cfg.CredsFile, "creds",
		getEnv("LATTICE_CREDS_FILE", ""),
		"Credentials file used to authenticate against NATS (env: LATTICE_CREDS_FILE)")

	fs.Int64Var(&cfg.TimeoutMillis, "timeout",
		getEnvInt64("LATTICE_RPC_TIMEOUT_MILLIS", 600),
		"Lattice request timeout in milliseconds (env: LATTICE_RPC_TIMEOUT_MILLIS)")

	fs.BoolVar(&cfg.JSON, "json", false, "Render the output in JSON")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("LATTICE_LOG_LEVEL", "warn"),
		"Log level: debug, info, warn, error (env: LATTICE_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: json, text")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	fs.Usage = printHelp

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) > 0 {
		cfg.Command = rest[0]
	}
	if len(rest) > 1 {
		cfg.Entity = rest[1]
	}

	if err := validateFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.TimeoutMillis <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", cfg.TimeoutMillis)
	}

	if cfg.CredsFile != "" {
		if _, err := os.Stat(cfg.CredsFile); err != nil {
			return fmt.Errorf("creds file not found: %s", cfg.CredsFile)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	return nil
}

func printHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - interact with a waSCC lattice

Usage: %s [options] <command>

Commands:
  list hosts        Probe every host on the lattice and print its inventory
  list workloads    List the workloads running on each host
  list links        List the link bindings known on each host
  watch             Stream lattice events until interrupted

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # List hosts on a remote lattice
  %s --url nats://lattice.example.com:4222 list hosts

  # Use the same environment a lattice host reads
  export LATTICE_HOST=10.0.0.5
  export LATTICE_CREDS_FILE=/etc/lattice/user.creds
  %s list workloads

  # Stream events as JSON lines
  %s --json watch

Version: %s
`, os.Args[0], os.Args[0], os.Args[0], Version)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
