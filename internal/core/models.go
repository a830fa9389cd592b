package core

import "fmt"

// Source identifies the package-management subsystem a package belongs to
type Source string

const (
	SourceFlatpak Source = "flatpak"
	SourceSnap    Source = "snap"
	SourceApt     Source = "apt"
)

// AllSources lists the sources in discovery order
var AllSources = []Source{SourceFlatpak, SourceSnap, SourceApt}

// DisplayName returns the name used in section headers
func (s Source) DisplayName() string {
	switch s {
	case SourceFlatpak:
		return "Flatpak"
	case SourceSnap:
		return "Snap"
	case SourceApt:
		return "APT"
	default:
		return string(s)
	}
}

// ParseSource converts a user supplied source name
func ParseSource(name string) (Source, error) {
	switch Source(name) {
	case SourceFlatpak, SourceSnap, SourceApt:
		return Source(name), nil
	default:
		return "", fmt.Errorf("unknown source %q (expected flatpak, snap or apt)", name)
	}
}

// MatchMode controls how parsed identifiers are filtered against the search term
type MatchMode int

const (
	MatchSubstring MatchMode = iota
	MatchExact
)

func (m MatchMode) String() string {
	if m == MatchExact {
		return "exact"
	}
	return "substring"
}

// SearchRequest is the parsed command line
type SearchRequest struct {
	Term string
	Mode MatchMode
}

// FoundPackage is one match reported by a backend
type FoundPackage struct {
	Source Source `json:"source"`
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"` // human-readable name, Flatpak only
}

func (p FoundPackage) String() string {
	return fmt.Sprintf("%s:%s", p.Source, p.ID)
}

// FoundPackages keeps discovery order and is never deduplicated
type FoundPackages []FoundPackage

// Outcome is the typed result of an external command
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeNotFound    Outcome = "not-found"
	OutcomeUnavailable Outcome = "backend-unavailable"
	OutcomeFailed      Outcome = "command-failed"
	OutcomeSkipped     Outcome = "skipped"
)

// QueryResult holds the raw output of one backend query
type QueryResult struct {
	Source  Source
	Output  string
	Outcome Outcome
	Err     error
}

// RemovalResult holds the outcome of removing one package
type RemovalResult struct {
	Package FoundPackage
	Outcome Outcome
	Err     error
}

// RunSummary aggregates removal results for the final status line
type RunSummary struct {
	Attempted int
	Removed   int
	Skipped   int
	Failed    int
	Results   []RemovalResult
}

// Record adds a result to the summary
func (s *RunSummary) Record(r RemovalResult) {
	s.Attempted++
	switch r.Outcome {
	case OutcomeSuccess:
		s.Removed++
	case OutcomeSkipped, OutcomeNotFound:
		s.Skipped++
	default:
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// Exit codes
const (
	ExitSuccess      = 0
	ExitNoTerm       = 1
	ExitTooManyTerms = 2

	// ExitUsage covers bad flags and flag values; it shares ExitNoTerm's code
	ExitUsage = ExitNoTerm
)
