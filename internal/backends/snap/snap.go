package snap

import (
	"context"
	"strings"

	"github.com/quantmind-br/pkgpurge/internal/backends/base"
	"github.com/quantmind-br/pkgpurge/internal/core"
	"github.com/quantmind-br/pkgpurge/internal/security"
)

const (
	tool      = "snap"
	noMatches = "No matching snaps found"
)

// SnapBackend wraps the snap CLI
type SnapBackend struct {
	*base.BaseBackend
}

// New creates a new Snap backend
func New(b *base.BaseBackend) *SnapBackend {
	return &SnapBackend{BaseBackend: b}
}

// Name returns the backend name
func (s *SnapBackend) Name() string {
	return tool
}

// Source returns core.SourceSnap
func (s *SnapBackend) Source() core.Source {
	return core.SourceSnap
}

// Available reports whether snap is installed
func (s *SnapBackend) Available() bool {
	return s.Runner.CommandExists(tool)
}

// Query runs `snap find <term>`
func (s *SnapBackend) Query(ctx context.Context, term string) core.QueryResult {
	return s.RunQuery(ctx, core.SourceSnap, noMatches, tool, "find", term)
}

// Parse takes the first column of each result row, skipping the
// "Name Version Publisher ..." header and separator rows
func (s *SnapBackend) Parse(output string) []base.Candidate {
	var candidates []base.Candidate

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		name := fields[0]
		if name == "Name" || isSeparator(name) {
			continue
		}
		if security.ValidatePackageName(name) != nil {
			continue
		}

		candidates = append(candidates, base.Candidate{ID: name})
	}

	return candidates
}

// Display returns the search output unchanged
func (s *SnapBackend) Display(output string) string {
	return output
}

// Remove runs `snap remove <name>` with elevated privileges
func (s *SnapBackend) Remove(ctx context.Context, pkg core.FoundPackage) core.RemovalResult {
	if !s.Available() {
		return base.Unavailable(pkg, tool)
	}

	name, args := s.Elevated(tool, "remove", pkg.ID)
	return s.RunRemoval(ctx, pkg, name, args...)
}

func isSeparator(field string) bool {
	return strings.Trim(field, "-=─") == ""
}
