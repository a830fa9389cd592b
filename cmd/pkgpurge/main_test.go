package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/quantmind-br/pkgpurge/internal/cmd"
	"github.com/quantmind-br/pkgpurge/internal/config"
	"github.com/quantmind-br/pkgpurge/internal/core"
	"github.com/quantmind-br/pkgpurge/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const colorNever = "never"

func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home+"/.config")
	t.Setenv("XDG_CACHE_HOME", home+"/.cache")
	t.Setenv("XDG_DATA_HOME", home+"/.local/share")
}

func TestConfigLoad(t *testing.T) {
	isolate(t)

	cfg, err := config.Load()
	require.NoError(t, err, "Configuration should load without error")
	assert.NotNil(t, cfg, "Configuration should not be nil")
}

func TestLoggerInitialization(t *testing.T) {
	isolate(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	log := logging.NewLogger(logging.Config{
		Level:   cfg.Logging.Level,
		LogFile: cfg.Paths.LogFile,
		NoColor: cfg.Logging.Color == colorNever,
		Console: io.Discard,
	})
	assert.NotNil(t, log, "Logger should not be nil")
}

func TestCommandExecution(t *testing.T) {
	isolate(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	log := logging.NewLogger(logging.Config{
		Level:   cfg.Logging.Level,
		LogFile: cfg.Paths.LogFile,
		NoColor: true,
		Console: io.Discard,
	})

	var out bytes.Buffer
	rootCmd := cmd.NewRootCmd(cfg, log, version)
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "pkgpurge version "+version)
}

func TestRun_UsageExitCodes(t *testing.T) {
	isolate(t)

	assert.Equal(t, core.ExitNoTerm, run([]string{}))
	assert.Equal(t, core.ExitTooManyTerms, run([]string{"firefox", "chromium"}))
	assert.Equal(t, core.ExitUsage, run([]string{"--source", "pacman", "firefox"}))
	assert.Equal(t, core.ExitSuccess, run([]string{"version"}))
}
