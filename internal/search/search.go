package search

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/quantmind-br/pkgpurge/internal/backends"
	"github.com/quantmind-br/pkgpurge/internal/backends/base"
	"github.com/quantmind-br/pkgpurge/internal/core"
	"github.com/quantmind-br/pkgpurge/internal/ui"
	"github.com/rs/zerolog"
)

const maxSuggestions = 3

// Searcher queries each backend in turn and collects the matching packages
type Searcher struct {
	backends []backends.Backend
	printer  *ui.Printer
	log      *zerolog.Logger

	// SpinnerOut receives the progress spinner; nil disables it
	SpinnerOut io.Writer
}

// New creates a Searcher over backends, in the given order
func New(bs []backends.Backend, printer *ui.Printer, log *zerolog.Logger) *Searcher {
	return &Searcher{
		backends: bs,
		printer:  printer,
		log:      log,
	}
}

// Search runs every backend query, echoes its output under a section header
// and returns the matches in discovery order. Backend failures only reduce
// the result set.
func (s *Searcher) Search(ctx context.Context, req core.SearchRequest) core.FoundPackages {
	var found core.FoundPackages

	for _, b := range s.backends {
		src := b.Source()
		s.printer.SourceHeader(src)

		spinner := ui.NewSpinner(s.SpinnerOut, "Searching "+src.DisplayName(), s.SpinnerOut != nil)
		res := b.Query(ctx, req.Term)
		spinner.Stop()

		s.log.Debug().
			Str("source", string(src)).
			Str("outcome", string(res.Outcome)).
			Str("term", req.Term).
			Msg("backend query finished")

		switch res.Outcome {
		case core.OutcomeUnavailable:
			s.printer.Warning("%s not available", b.Name())
			continue
		case core.OutcomeFailed:
			s.printer.Warning("%s search failed: %v", b.Name(), res.Err)
		}

		if res.Output == "" {
			s.printer.Plain("No matches found")
			continue
		}

		s.printer.Raw(b.Display(res.Output))

		candidates := b.Parse(res.Output)
		kept := Filter(src, candidates, req)

		if req.Mode == core.MatchExact && len(candidates) > 0 && len(kept) == 0 {
			if hints := Suggest(req.Term, candidates); len(hints) > 0 {
				s.printer.Info("No exact %s match. Did you mean: %s", src.DisplayName(), strings.Join(hints, ", "))
			}
		}

		for _, c := range kept {
			found = append(found, core.FoundPackage{Source: src, ID: c.ID, Name: c.Name})
		}
	}

	s.log.Info().
		Str("term", req.Term).
		Str("mode", req.Mode.String()).
		Int("found", len(found)).
		Msg("search finished")

	return found
}

// Filter applies the match mode. Substring mode keeps every candidate; the
// backends already did the fuzzy matching. Exact mode keeps candidates whose
// ID equals term, or for Flatpak whose display name equals term.
func Filter(src core.Source, candidates []base.Candidate, req core.SearchRequest) []base.Candidate {
	if req.Mode != core.MatchExact {
		return candidates
	}

	var kept []base.Candidate
	for _, c := range candidates {
		if c.ID == req.Term || (src == core.SourceFlatpak && c.Name != "" && c.Name == req.Term) {
			kept = append(kept, c)
		}
	}
	return kept
}

// Suggest ranks candidate identifiers that fuzzily contain term, closest first
func Suggest(term string, candidates []base.Candidate) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range candidates {
		if !seen[c.ID] {
			seen[c.ID] = true
			ids = append(ids, c.ID)
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(term, ids)
	sort.Stable(ranks)

	var hints []string
	for _, r := range ranks {
		if len(hints) == maxSuggestions {
			break
		}
		hints = append(hints, r.Target)
	}
	return hints
}
