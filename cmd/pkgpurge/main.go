package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantmind-br/pkgpurge/internal/cmd"
	"github.com/quantmind-br/pkgpurge/internal/config"
	"github.com/quantmind-br/pkgpurge/internal/core"
	"github.com/quantmind-br/pkgpurge/internal/logging"
	"github.com/quantmind-br/pkgpurge/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	ui.InitColors(cfg.Logging.Color)

	log := logging.NewLogger(logging.Config{
		Level:   cfg.Logging.Level,
		LogFile: cfg.Paths.LogFile,
		NoColor: cfg.Logging.Color == "never",
	})

	rootCmd := cmd.NewRootCmd(cfg, log, version)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// usage errors were already printed together with the usage text
		var usageErr *core.UsageError
		if errors.As(err, &usageErr) {
			return usageErr.Code
		}
		log.Error().Err(err).Msg("command failed")
		return 1
	}
	return core.ExitSuccess
}
