package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/pkgpurge/internal/config"
)

// NamePlaceholder is replaced by a package name in user directory templates
const NamePlaceholder = "{name}"

// Resolver centralizes the default locations pkgpurge inspects.
// It derives user directories from HOME and the configuration.
type Resolver struct {
	homeDir string
	cfg     *config.Config
}

// NewResolver creates a Resolver using the current user's HOME.
func NewResolver(cfg *config.Config) *Resolver {
	homeDir, _ := os.UserHomeDir()
	return &Resolver{
		homeDir: homeDir,
		cfg:     cfg,
	}
}

// NewResolverWithHome creates a Resolver with an explicit homeDir (for tests).
func NewResolverWithHome(cfg *config.Config, homeDir string) *Resolver {
	return &Resolver{
		homeDir: homeDir,
		cfg:     cfg,
	}
}

// HomeDir returns the resolved HOME directory.
func (r *Resolver) HomeDir() string {
	return r.homeDir
}

// UserAppsDir returns ~/.local/share/applications.
func (r *Resolver) UserAppsDir() string {
	return filepath.Join(r.homeDir, ".local", "share", "applications")
}

// DesktopDirs returns the application-menu directories searched for
// desktop entries, from cleanup.desktop_dirs or the standard set.
func (r *Resolver) DesktopDirs() []string {
	if r.cfg != nil && len(r.cfg.Cleanup.DesktopDirs) > 0 {
		return r.cfg.Cleanup.DesktopDirs
	}
	return []string{
		"/usr/share/applications",
		"/usr/local/share/applications",
		r.UserAppsDir(),
	}
}

// userDirTemplates returns cleanup.user_dirs or the standard set.
func (r *Resolver) userDirTemplates() []string {
	if r.cfg != nil && len(r.cfg.Cleanup.UserDirs) > 0 {
		return r.cfg.Cleanup.UserDirs
	}
	return []string{
		filepath.Join(r.homeDir, ".config", NamePlaceholder),
		filepath.Join(r.homeDir, ".cache", NamePlaceholder),
		filepath.Join(r.homeDir, ".local", "share", NamePlaceholder),
		filepath.Join(r.homeDir, "."+NamePlaceholder),
	}
}

// UserDirs expands every user directory template for each name, in
// template-major order, without duplicates.
func (r *Resolver) UserDirs(names []string) []string {
	seen := make(map[string]bool)
	var dirs []string

	for _, tmpl := range r.userDirTemplates() {
		for _, name := range names {
			if name == "" {
				continue
			}
			dir := filepath.Clean(strings.ReplaceAll(tmpl, NamePlaceholder, name))
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}

	return dirs
}

// sensitiveHomeDirs hold keys, credentials or other tools' data and share
// names with packages (ssh, gnupg, pki)
var sensitiveHomeDirs = []string{
	".ssh",
	".gnupg",
	".pki",
	".local",
	".config",
	".cache",
	".password-store",
	".kube",
	".docker",
	".aws",
}

// ProtectedPaths lists directories cleanup must never delete themselves.
func (r *Resolver) ProtectedPaths() []string {
	protected := []string{
		"/",
		"/etc",
		"/usr",
		"/usr/share",
		"/var",
		"/opt",
		"/home",
		"/root",
	}

	if r.homeDir != "" {
		protected = append(protected, r.homeDir, filepath.Join(r.homeDir, ".local", "share"))
		for _, dir := range sensitiveHomeDirs {
			protected = append(protected, filepath.Join(r.homeDir, dir))
		}
	}

	for _, tmpl := range r.userDirTemplates() {
		protected = append(protected, filepath.Clean(filepath.Dir(tmpl)))
	}

	return append(protected, r.DesktopDirs()...)
}
