// Package main administers rollbot dice pools.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	entrypoint "github.com/louisbranch/rollbot/internal/platform/cmd"
	"github.com/louisbranch/rollbot/internal/platform/config"
	"github.com/louisbranch/rollbot/internal/tools/poolctl"
)

func main() {
	cfg, err := poolctl.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePoolctl, func(ctx context.Context) error {
		return poolctl.Run(ctx, cfg, os.Stdout, os.Stderr)
	}); err != nil {
		config.Exitf("Error: %v", err)
	}
}
