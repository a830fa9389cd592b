package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quantmind-br/pkgpurge/internal/config"
	"github.com/quantmind-br/pkgpurge/internal/desktop"
	"github.com/quantmind-br/pkgpurge/internal/fsops"
	"github.com/quantmind-br/pkgpurge/internal/helpers"
	"github.com/quantmind-br/pkgpurge/internal/paths"
	"github.com/quantmind-br/pkgpurge/internal/security"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const commandTimeout = 30 * time.Second

// Report lists what a cleanup pass deleted and what it could not
type Report struct {
	Removed []string
	Failed  []string
}

// Cleaner deletes files a package purge leaves behind: desktop entries,
// directories under /etc and per-user config, cache and data directories.
// Every step is best effort.
type Cleaner struct {
	fs      afero.Fs
	runner  helpers.CommandRunner
	paths   *paths.Resolver
	log     *zerolog.Logger
	enabled bool
	elevate string

	// CanRemove decides whether a path can be deleted without elevation
	CanRemove func(path string) bool
}

// New creates a Cleaner. elevate prefixes rm when a parent directory is
// not writable; empty means run rm directly.
func New(fs afero.Fs, runner helpers.CommandRunner, resolver *paths.Resolver, log *zerolog.Logger, cfg *config.Config, elevate string) *Cleaner {
	enabled := true
	if cfg != nil {
		enabled = cfg.Cleanup.Enabled
	}
	return &Cleaner{
		fs:        fs,
		runner:    runner,
		paths:     resolver,
		log:       log,
		enabled:   enabled,
		elevate:   elevate,
		CanRemove: fsops.CanRemove,
	}
}

// Clean removes residual files for pkgName. etcPaths is the file list the
// package manager recorded before the purge; only entries under /etc that
// are still directories are considered. Paths dpkg still assigns to an
// installed package are kept, and so are /etc directories holding files
// from outside etcPaths unless the directory carries the package's name.
func (c *Cleaner) Clean(ctx context.Context, pkgName string, etcPaths []string) Report {
	var report Report

	if !c.enabled {
		c.log.Debug().Str("package", pkgName).Msg("residual cleanup disabled")
		return report
	}

	if err := security.ValidatePackageName(pkgName); err != nil {
		c.log.Warn().Err(err).Str("package", pkgName).Msg("skipping residual cleanup")
		return report
	}

	names := helpers.NameVariants(pkgName)
	protected := c.paths.ProtectedPaths()

	c.log.Debug().
		Str("package", pkgName).
		Strs("names", names).
		Msg("cleaning residual files")

	for _, file := range desktop.FindEntries(c.fs, c.paths.DesktopDirs(), names) {
		if c.ownedByInstalled(ctx, file) {
			continue
		}
		if entry, err := desktop.ParseFile(c.fs, file); err == nil && entry.Name != "" {
			c.log.Debug().Str("path", file).Str("entry", entry.Name).Msg("removing desktop entry")
		}
		c.remove(ctx, file, protected, &report)
	}

	owned := make(map[string]bool, len(etcPaths))
	for _, p := range etcPaths {
		owned[filepath.Clean(strings.TrimSpace(p))] = true
	}

	for _, dir := range etcDirs(etcPaths) {
		if !fsops.IsDir(c.fs, dir) || c.ownedByInstalled(ctx, dir) {
			continue
		}
		if !namedAfter(dir, names) && c.holdsForeignFiles(dir, owned) {
			c.log.Debug().Str("path", dir).Msg("keeping shared directory")
			continue
		}
		c.remove(ctx, dir, protected, &report)
	}

	for _, dir := range c.paths.UserDirs(names) {
		if !fsops.Exists(c.fs, dir) {
			continue
		}
		c.remove(ctx, dir, protected, &report)
	}

	c.log.Info().
		Str("package", pkgName).
		Int("removed", len(report.Removed)).
		Int("failed", len(report.Failed)).
		Msg("residual cleanup finished")

	return report
}

func (c *Cleaner) remove(ctx context.Context, path string, protected []string, report *Report) {
	if err := security.ValidateCleanupTarget(path, protected); err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("refusing to remove path")
		report.Failed = append(report.Failed, path)
		return
	}

	var err error
	if c.CanRemove(path) {
		err = fsops.RemoveAll(c.fs, path)
	} else {
		err = c.removeElevated(ctx, path)
	}

	if err != nil {
		c.log.Debug().Err(err).Str("path", path).Msg("failed to remove residual path (ignored)")
		report.Failed = append(report.Failed, path)
		return
	}

	c.log.Debug().Str("path", path).Msg("removed residual path")
	report.Removed = append(report.Removed, path)
}

func (c *Cleaner) removeElevated(ctx context.Context, path string) error {
	runCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	name, args := "rm", []string{"-rf", "--", path}
	if c.elevate != "" {
		name, args = c.elevate, append([]string{"rm"}, args...)
	}

	_, err := c.runner.RunCommand(runCtx, name, args...)
	return err
}

// ownedByInstalled reports whether dpkg still lists path for some
// installed package. The purged package is gone from the database by now,
// so any match belongs to another one.
func (c *Cleaner) ownedByInstalled(ctx context.Context, path string) bool {
	runCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := c.runner.RunCommand(runCtx, "dpkg", "-S", path)
	if runCtx.Err() != nil {
		// unanswered, so keep the path
		return true
	}
	if err != nil || strings.TrimSpace(out) == "" {
		return false
	}
	c.log.Debug().Str("path", path).Str("owners", strings.TrimSpace(out)).Msg("path still owned, keeping")
	return true
}

// holdsForeignFiles reports whether dir contains a file that is not in owned
func (c *Cleaner) holdsForeignFiles(dir string, owned map[string]bool) bool {
	foreign := false
	err := afero.Walk(c.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && !owned[path] {
			foreign = true
			return filepath.SkipAll
		}
		return nil
	})
	return foreign || err != nil
}

func namedAfter(dir string, names []string) bool {
	base := filepath.Base(dir)
	for _, name := range names {
		if strings.EqualFold(base, name) {
			return true
		}
	}
	return false
}

// etcDirs returns the distinct clean paths strictly below /etc
func etcDirs(files []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		clean := filepath.Clean(f)
		if clean == "/etc" || seen[clean] {
			continue
		}
		if within, err := security.IsPathWithinDirectory(clean, "/etc"); err != nil || !within {
			continue
		}
		seen[clean] = true
		dirs = append(dirs, clean)
	}
	return dirs
}
