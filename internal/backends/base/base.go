package base

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/quantmind-br/pkgpurge/internal/config"
	"github.com/quantmind-br/pkgpurge/internal/core"
	"github.com/quantmind-br/pkgpurge/internal/helpers"
	"github.com/quantmind-br/pkgpurge/internal/paths"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

const (
	defaultQueryTimeout  = 60 * time.Second
	defaultRemoveTimeout = 600 * time.Second
)

// Candidate is one row parsed from a backend query, before match filtering
type Candidate struct {
	ID   string
	Name string
}

// BaseBackend holds the dependencies shared by every backend.
// It does not implement the Backend interface; concrete backends embed it.
//
//nolint:revive // exported name is kept for clarity across internal packages.
type BaseBackend struct {
	Fs     afero.Fs
	Runner helpers.CommandRunner
	Paths  *paths.Resolver
	Log    *zerolog.Logger
	Cfg    *config.Config

	// Out receives the streamed output of removal commands
	Out io.Writer

	// Elevate prefixes privileged commands; empty when already root
	Elevate string
}

// NewWithDeps creates a BaseBackend with injected dependencies (for tests).
func NewWithDeps(cfg *config.Config, log *zerolog.Logger, fs afero.Fs, runner helpers.CommandRunner, out io.Writer) *BaseBackend {
	if out == nil {
		out = io.Discard
	}
	return &BaseBackend{
		Fs:      fs,
		Runner:  runner,
		Paths:   paths.NewResolver(cfg),
		Log:     log,
		Cfg:     cfg,
		Out:     out,
		Elevate: elevateCommand(cfg, unix.Geteuid()),
	}
}

func elevateCommand(cfg *config.Config, euid int) string {
	if euid == 0 || cfg == nil {
		return ""
	}
	return cfg.Removal.ElevateCmd
}

// Elevated returns the command line for a privileged invocation of name
func (b *BaseBackend) Elevated(name string, args ...string) (string, []string) {
	if b.Elevate == "" {
		return name, args
	}
	return b.Elevate, append([]string{name}, args...)
}

// QueryContext bounds a backend search by search.timeout_secs
func (b *BaseBackend) QueryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := defaultQueryTimeout
	if b.Cfg != nil && b.Cfg.Search.TimeoutSecs > 0 {
		timeout = time.Duration(b.Cfg.Search.TimeoutSecs) * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// RemoveContext bounds a removal command by removal.timeout_secs
func (b *BaseBackend) RemoveContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := defaultRemoveTimeout
	if b.Cfg != nil && b.Cfg.Removal.TimeoutSecs > 0 {
		timeout = time.Duration(b.Cfg.Removal.TimeoutSecs) * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// RunQuery runs a search command and classifies its output. Output is
// empty unless the tool ran; sentinel, when found in stdout or stderr, marks
// an explicit "no results" answer. A failing tool keeps whatever stdout it
// produced.
func (b *BaseBackend) RunQuery(ctx context.Context, src core.Source, sentinel, tool string, args ...string) core.QueryResult {
	res := core.QueryResult{Source: src}

	if !b.Runner.CommandExists(tool) {
		b.Log.Warn().Str("tool", tool).Msg("query tool not available")
		res.Outcome = core.OutcomeUnavailable
		res.Err = &toolError{tool: tool}
		return res
	}

	queryCtx, cancel := b.QueryContext(ctx)
	defer cancel()

	stdout, stderr, err := b.Runner.RunCommandWithOutput(queryCtx, tool, args...)

	if sentinel != "" && (strings.Contains(stdout, sentinel) || strings.Contains(stderr, sentinel)) {
		res.Outcome = core.OutcomeNotFound
		return res
	}

	if err != nil {
		if helpers.IsCommandNotFound(err) {
			res.Outcome = core.OutcomeUnavailable
			res.Err = &toolError{tool: tool}
			return res
		}
		b.Log.Warn().
			Err(err).
			Str("tool", tool).
			Str("stderr", strings.TrimSpace(stderr)).
			Msg("query command failed")
		res.Outcome = core.OutcomeFailed
		res.Output = stdout
		res.Err = fmt.Errorf("%s query: %w", tool, err)
		return res
	}

	if strings.TrimSpace(stdout) == "" {
		res.Outcome = core.OutcomeNotFound
		return res
	}

	res.Outcome = core.OutcomeSuccess
	res.Output = stdout
	return res
}

// RunRemoval streams a removal command to Out and classifies the result.
// A missing executable is OutcomeUnavailable; any other error is OutcomeFailed.
func (b *BaseBackend) RunRemoval(ctx context.Context, pkg core.FoundPackage, name string, args ...string) core.RemovalResult {
	runCtx, cancel := b.RemoveContext(ctx)
	defer cancel()

	b.Log.Debug().
		Str("package", pkg.String()).
		Str("command", name).
		Strs("args", args).
		Msg("running removal command")

	err := b.Runner.RunCommandStreaming(runCtx, b.Out, b.Out, name, args...)
	if err != nil {
		outcome := core.OutcomeFailed
		if helpers.IsCommandNotFound(err) {
			outcome = core.OutcomeUnavailable
		}
		b.Log.Warn().
			Err(err).
			Str("package", pkg.String()).
			Int("exit_code", b.Runner.GetExitCode(err)).
			Msg("removal command failed")
		return core.RemovalResult{Package: pkg, Outcome: outcome, Err: err}
	}

	b.Log.Info().Str("package", pkg.String()).Msg("package removed")
	return core.RemovalResult{Package: pkg, Outcome: core.OutcomeSuccess}
}

// Unavailable builds the result for a removal whose tool is missing
func Unavailable(pkg core.FoundPackage, tool string) core.RemovalResult {
	return core.RemovalResult{
		Package: pkg,
		Outcome: core.OutcomeUnavailable,
		Err:     &toolError{tool: tool},
	}
}

type toolError struct {
	tool string
}

func (e *toolError) Error() string {
	return e.tool + ": " + core.ErrToolUnavailable.Error()
}

func (e *toolError) Unwrap() error {
	return core.ErrToolUnavailable
}
