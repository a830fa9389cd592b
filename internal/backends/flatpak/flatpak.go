package flatpak

import (
	"context"
	"regexp"
	"strings"

	"github.com/quantmind-br/pkgpurge/internal/backends/base"
	"github.com/quantmind-br/pkgpurge/internal/core"
)

const (
	tool      = "flatpak"
	noMatches = "No matches found"
)

// appIDPattern accepts reverse-DNS application IDs with at least three segments
var appIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+){2,}$`)

// FlatpakBackend wraps the flatpak CLI
type FlatpakBackend struct {
	*base.BaseBackend
}

// New creates a new Flatpak backend
func New(b *base.BaseBackend) *FlatpakBackend {
	return &FlatpakBackend{BaseBackend: b}
}

// Name returns the backend name
func (f *FlatpakBackend) Name() string {
	return tool
}

// Source returns core.SourceFlatpak
func (f *FlatpakBackend) Source() core.Source {
	return core.SourceFlatpak
}

// Available reports whether flatpak is installed
func (f *FlatpakBackend) Available() bool {
	return f.Runner.CommandExists(tool)
}

// Query runs `flatpak search <term>`
func (f *FlatpakBackend) Query(ctx context.Context, term string) core.QueryResult {
	return f.RunQuery(ctx, core.SourceFlatpak, noMatches, tool, "search", term)
}

// Parse reads tab-separated search rows: name, description, application ID, ...
// Rows without a well-formed application ID in the third column are dropped.
func (f *FlatpakBackend) Parse(output string) []base.Candidate {
	var candidates []base.Candidate

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}

		id := strings.TrimSpace(fields[2])
		if !appIDPattern.MatchString(id) {
			continue
		}

		candidates = append(candidates, base.Candidate{
			ID:   id,
			Name: strings.TrimSpace(fields[0]),
		})
	}

	return candidates
}

// Display returns the search output unchanged
func (f *FlatpakBackend) Display(output string) string {
	return output
}

// Remove runs `flatpak uninstall --delete-data -y <id>`
func (f *FlatpakBackend) Remove(ctx context.Context, pkg core.FoundPackage) core.RemovalResult {
	if !f.Available() {
		return base.Unavailable(pkg, tool)
	}

	return f.RunRemoval(ctx, pkg, tool, "uninstall", "--delete-data", "-y", pkg.ID)
}
