package apt

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/quantmind-br/pkgpurge/internal/backends/base"
	"github.com/quantmind-br/pkgpurge/internal/cleanup"
	"github.com/quantmind-br/pkgpurge/internal/core"
	"github.com/quantmind-br/pkgpurge/internal/finalize"
	"github.com/quantmind-br/pkgpurge/internal/security"
	"github.com/rs/zerolog"
)

const (
	searchTool  = "apt-cache"
	removeTool  = "apt-get"
	dpkgTool    = "dpkg"
	installedOK = "Status: install ok installed"

	defaultDisplayLimit = 20

	// Deferred action names
	ActionAutoremove      = "apt-autoremove"
	ActionAutoclean       = "apt-autoclean"
	ActionDesktopDatabase = "desktop-database"
)

var packageNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+._-]*$`)

// Cleaner removes residual files after a purge
type Cleaner interface {
	Clean(ctx context.Context, pkgName string, etcPaths []string) cleanup.Report
}

// DesktopRefresher rebuilds desktop entry databases
type DesktopRefresher interface {
	Update(ctx context.Context, dirs []string, log *zerolog.Logger) error
}

// AptBackend wraps apt-cache, apt-get and dpkg
type AptBackend struct {
	*base.BaseBackend
	cleaner   Cleaner
	refresher DesktopRefresher
	fin       *finalize.Manager
}

// New creates a new APT backend. cleaner, refresher and fin may be nil.
func New(b *base.BaseBackend, cleaner Cleaner, refresher DesktopRefresher, fin *finalize.Manager) *AptBackend {
	return &AptBackend{
		BaseBackend: b,
		cleaner:     cleaner,
		refresher:   refresher,
		fin:         fin,
	}
}

// Name returns the backend name
func (a *AptBackend) Name() string {
	return searchTool
}

// Source returns core.SourceApt
func (a *AptBackend) Source() core.Source {
	return core.SourceApt
}

// Available reports whether apt-cache is installed
func (a *AptBackend) Available() bool {
	return a.Runner.CommandExists(searchTool)
}

// Query runs `apt-cache search <term>`. An empty answer triggers one
// best-effort index refresh and a second search when enabled.
func (a *AptBackend) Query(ctx context.Context, term string) core.QueryResult {
	res := a.RunQuery(ctx, core.SourceApt, "", searchTool, "search", term)
	if res.Outcome != core.OutcomeNotFound || !a.refreshEnabled() {
		return res
	}

	a.Log.Debug().Str("term", term).Msg("no apt results, refreshing package index")
	a.refreshIndex(ctx)

	return a.RunQuery(ctx, core.SourceApt, "", searchTool, "search", term)
}

func (a *AptBackend) refreshEnabled() bool {
	return a.Cfg == nil || a.Cfg.Search.RefreshAptIndex
}

func (a *AptBackend) refreshIndex(ctx context.Context) {
	if !a.Runner.CommandExists(removeTool) {
		return
	}

	runCtx, cancel := a.QueryContext(ctx)
	defer cancel()

	name, args := a.Elevated(removeTool, "update", "-qq")
	if err := a.Runner.RunCommandStreaming(runCtx, nil, nil, name, args...); err != nil {
		a.Log.Warn().Err(err).Msg("apt index refresh failed (ignored)")
	}
}

// Parse takes the package name before " - " on each line
func (a *AptBackend) Parse(output string) []base.Candidate {
	var candidates []base.Candidate

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, _, _ := strings.Cut(line, " ")
		if !packageNamePattern.MatchString(name) {
			continue
		}

		candidates = append(candidates, base.Candidate{ID: name})
	}

	return candidates
}

// Display returns at most search.apt_display_limit lines of output,
// followed by a notice when lines were cut
func (a *AptBackend) Display(output string) string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	limit := a.displayLimit()
	if len(lines) <= limit {
		return strings.Join(lines, "\n")
	}

	return strings.Join(lines[:limit], "\n") +
		fmt.Sprintf("\n... (showing %d of %d results)", limit, len(lines))
}

func (a *AptBackend) displayLimit() int {
	if a.Cfg != nil && a.Cfg.Search.AptDisplayLimit > 0 {
		return a.Cfg.Search.AptDisplayLimit
	}
	return defaultDisplayLimit
}

// Remove purges an installed package, cleans its residual files and queues
// the post-removal maintenance actions. Packages dpkg does not report as
// installed are skipped.
func (a *AptBackend) Remove(ctx context.Context, pkg core.FoundPackage) core.RemovalResult {
	if !a.Runner.CommandExists(removeTool) {
		return base.Unavailable(pkg, removeTool)
	}

	if err := security.ValidatePackageName(pkg.ID); err != nil {
		return core.RemovalResult{Package: pkg, Outcome: core.OutcomeFailed, Err: err}
	}

	if !a.isInstalled(ctx, pkg.ID) {
		a.Log.Info().Str("package", pkg.ID).Msg("package not installed, skipping")
		return core.RemovalResult{
			Package: pkg,
			Outcome: core.OutcomeSkipped,
			Err:     fmt.Errorf("%s: %w", pkg.ID, core.ErrNotInstalled),
		}
	}

	// dpkg forgets the file list once the package is purged
	files := a.listFiles(ctx, pkg.ID)

	name, args := a.Elevated(removeTool, "purge", "-y", pkg.ID)
	res := a.RunRemoval(ctx, pkg, name, args...)
	if res.Outcome != core.OutcomeSuccess {
		return res
	}

	// the purge is done; its leftovers are cleaned even if the run was interrupted
	if a.cleaner != nil {
		a.cleaner.Clean(context.WithoutCancel(ctx), pkg.ID, files)
	}
	a.queueFinalizers()

	return res
}

func (a *AptBackend) isInstalled(ctx context.Context, pkgName string) bool {
	queryCtx, cancel := a.QueryContext(ctx)
	defer cancel()

	out, err := a.Runner.RunCommand(queryCtx, dpkgTool, "-s", pkgName)
	if err != nil {
		return false
	}
	return strings.Contains(out, installedOK)
}

func (a *AptBackend) listFiles(ctx context.Context, pkgName string) []string {
	queryCtx, cancel := a.QueryContext(ctx)
	defer cancel()

	out, err := a.Runner.RunCommand(queryCtx, dpkgTool, "-L", pkgName)
	if err != nil {
		a.Log.Debug().Err(err).Str("package", pkgName).Msg("could not list package files")
		return nil
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files
}

func (a *AptBackend) queueFinalizers() {
	if a.fin == nil {
		return
	}

	if a.refresher != nil {
		a.fin.Add(ActionDesktopDatabase, func(ctx context.Context) error {
			return a.refresher.Update(ctx, a.Paths.DesktopDirs(), a.Log)
		})
	}

	a.fin.Add(ActionAutoremove, func(ctx context.Context) error {
		return a.maintenance(ctx, "autoremove", "-y")
	})
	a.fin.Add(ActionAutoclean, func(ctx context.Context) error {
		return a.maintenance(ctx, "autoclean")
	})
}

func (a *AptBackend) maintenance(ctx context.Context, args ...string) error {
	runCtx, cancel := a.RemoveContext(ctx)
	defer cancel()

	name, cmdArgs := a.Elevated(removeTool, args...)
	if err := a.Runner.RunCommandStreaming(runCtx, a.Out, a.Out, name, cmdArgs...); err != nil {
		return fmt.Errorf("apt-get %s: %w", args[0], err)
	}
	return nil
}
