// Package main implements latticectl, a command line utility for
// interacting with a waSCC lattice. It connects the same way a lattice host
// does and reads the same environment variables, so a machine that can run
// a host can run latticectl with no extra setup.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/wascc/lattice-client/client"
	"github.com/wascc/lattice-client/config"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "latticectl"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s error: %v\n", appName, err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp || cliCfg.Command == "" {
		printHelp()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg := config.Default()
	cfg.BusURL = config.NormalizeHostURL(cliCfg.BusURL)
	cfg.CredsFile = cliCfg.CredsFile
	cfg.RPCTimeoutMillis = cliCfg.TimeoutMillis
	cfg.LogLevel = cliCfg.LogLevel

	c, err := client.New(cfg, client.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		_ = c.Close(context.Background())
	}()

	switch cliCfg.Command {
	case "list":
		return listEntities(ctx, c, cliCfg)
	case "watch":
		return watchEvents(ctx, c, cliCfg)
	default:
		return fmt.Errorf("unknown command %q, valid commands are: list, watch", cliCfg.Command)
	}
}
