package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wslogger/pkg/collector"
	"wslogger/pkg/config"
	"wslogger/pkg/logging"
	"wslogger/pkg/sink"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Parse("wslogger", args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger := logging.Init(cfg.Log.Level, cfg.Log.Format)

	// Handle interrupt signal to gracefully shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := collector.New(ctx, cfg, collector.WithLogger(logger))
	if err != nil {
		logger.Error("failed to start collector", "error", err, "persist", sink.IsPersistError(err))
		return 1
	}
	defer c.Close()

	if err := c.Run(ctx); err != nil {
		logger.Error("collector stopped", "error", err, "persist", sink.IsPersistError(err))
		return 1
	}
	logger.Info("shutdown complete")
	return 0
}
