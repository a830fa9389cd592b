package backends

import (
	"context"
	"fmt"

	"github.com/quantmind-br/pkgpurge/internal/backends/apt"
	"github.com/quantmind-br/pkgpurge/internal/backends/base"
	"github.com/quantmind-br/pkgpurge/internal/backends/flatpak"
	"github.com/quantmind-br/pkgpurge/internal/backends/snap"
	"github.com/quantmind-br/pkgpurge/internal/cleanup"
	"github.com/quantmind-br/pkgpurge/internal/core"
	"github.com/quantmind-br/pkgpurge/internal/desktop"
	"github.com/quantmind-br/pkgpurge/internal/finalize"
)

// Backend interface that all package-manager wrappers implement
type Backend interface {
	// Name returns the query tool name
	Name() string

	// Source returns the subsystem this backend wraps
	Source() core.Source

	// Available reports whether the backend tool is installed
	Available() bool

	// Query runs the backend search for term
	Query(ctx context.Context, term string) core.QueryResult

	// Parse extracts raw candidates from Query output
	Parse(output string) []base.Candidate

	// Display returns the part of Query output echoed to the user
	Display(output string) string

	// Remove uninstalls one package
	Remove(ctx context.Context, pkg core.FoundPackage) core.RemovalResult
}

// Registry holds the backends in discovery order: Flatpak, Snap, APT
type Registry struct {
	backends []Backend
}

// NewRegistry creates a registry with all three backends sharing b.
// Removal side effects that must run once per invocation are queued on fin.
func NewRegistry(b *base.BaseBackend, fin *finalize.Manager) *Registry {
	refresher := desktop.NewRefresher(b.Runner, b.Elevate)
	cleaner := cleanup.New(b.Fs, b.Runner, b.Paths, b.Log, b.Cfg, b.Elevate)

	return NewRegistryWith(
		flatpak.New(b),
		snap.New(b),
		apt.New(b, cleaner, refresher, fin),
	)
}

// NewRegistryWith creates a registry from explicit backends (used by tests)
func NewRegistryWith(backends ...Backend) *Registry {
	return &Registry{backends: backends}
}

// Select returns the registered backends whose source is in sources,
// keeping registry order. An empty list selects every backend.
func (r *Registry) Select(sources []core.Source) []Backend {
	if len(sources) == 0 {
		return append([]Backend(nil), r.backends...)
	}

	wanted := make(map[core.Source]bool, len(sources))
	for _, s := range sources {
		wanted[s] = true
	}

	var selected []Backend
	for _, b := range r.backends {
		if wanted[b.Source()] {
			selected = append(selected, b)
		}
	}
	return selected
}

// Get retrieves the backend for a source
func (r *Registry) Get(src core.Source) (Backend, error) {
	for _, b := range r.backends {
		if b.Source() == src {
			return b, nil
		}
	}
	return nil, fmt.Errorf("no backend registered for source %q", src)
}
