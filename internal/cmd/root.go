package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/quantmind-br/pkgpurge/internal/backends"
	"github.com/quantmind-br/pkgpurge/internal/backends/base"
	"github.com/quantmind-br/pkgpurge/internal/config"
	"github.com/quantmind-br/pkgpurge/internal/core"
	"github.com/quantmind-br/pkgpurge/internal/finalize"
	"github.com/quantmind-br/pkgpurge/internal/helpers"
	"github.com/quantmind-br/pkgpurge/internal/remove"
	"github.com/quantmind-br/pkgpurge/internal/search"
	"github.com/quantmind-br/pkgpurge/internal/security"
	"github.com/quantmind-br/pkgpurge/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Deps are the host resources commands touch. Zero fields get the real
// implementation; tests inject mocks.
type Deps struct {
	Runner    helpers.CommandRunner
	Fs        afero.Fs
	Confirmer ui.Confirmer
	Out       io.Writer

	// Spinner receives progress spinners; nil disables them
	Spinner io.Writer
}

func (d Deps) withDefaults() Deps {
	if d.Runner == nil {
		d.Runner = helpers.NewOSCommandRunner()
	}
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	return d
}

type rootOptions struct {
	exact   bool
	yes     bool
	dryRun  bool
	sources []string
	timeout int
}

// NewRootCmd creates the root command wired to the real system
func NewRootCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	deps := Deps{}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		deps.Spinner = os.Stderr
	}
	return NewRootCmdWithDeps(cfg, log, version, deps)
}

// NewRootCmdWithDeps creates the root command with injected dependencies
func NewRootCmdWithDeps(cfg *config.Config, log *zerolog.Logger, version string, deps Deps) *cobra.Command {
	deps = deps.withDefaults()
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "pkgpurge [-e|--exact] <search-term>",
		Short: "Find and remove packages across Flatpak, Snap and APT",
		Long: `Search Flatpak, Snap and APT for packages matching a term, list the matches
and, after confirmation, remove them together with leftover configuration,
cache and desktop-entry files.

By default every match the package managers report is listed. With --exact
only identifiers equal to the term are kept.

To search for a term that is also a subcommand name, use: pkgpurge -- <term>`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseArgs(args, opts.exact)
			if err != nil {
				return usageFailure(cmd, deps.Out, err)
			}

			sources, err := resolveSources(opts.sources, cfg)
			if err != nil {
				return usageFailure(cmd, deps.Out, core.NewUsageError(core.ExitUsage, "%v", err))
			}

			return runPurge(cmd.Context(), withTimeout(cfg, opts.timeout), log, deps, req, sources, core.RemoveOptions{
				AssumeYes: opts.yes,
				DryRun:    opts.dryRun,
			})
		},
	}

	cmd.SetOut(deps.Out)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageFailure(c, deps.Out, core.NewUsageError(core.ExitUsage, "%v", err))
	})

	flags := cmd.Flags()
	flags.SetNormalizeFunc(normalizeFlagName)
	flags.BoolVarP(&opts.exact, "exact", "e", false, "only keep packages whose identifier equals the term")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "remove without asking for confirmation")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "list matches without removing anything")
	flags.StringSliceVar(&opts.sources, "source", nil, "package sources to search (flatpak, snap, apt)")
	flags.IntVar(&opts.timeout, "timeout", 0, "per-command timeout in seconds (0 uses the configured values)")

	_ = cmd.RegisterFlagCompletionFunc("source", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(core.AllSources))
		for i, s := range core.AllSources {
			names[i] = string(s)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(NewDoctorCmd(cfg, log, deps))
	cmd.AddCommand(NewCompletionCmd(cfg, log))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}

// normalizeFlagName accepts underscores and the plural --sources
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ReplaceAll(name, "_", "-")
	if name == "sources" {
		name = "source"
	}
	return pflag.NormalizedName(name)
}

// parseArgs turns the positional arguments into a search request. Exactly
// one term is accepted.
func parseArgs(args []string, exact bool) (core.SearchRequest, error) {
	switch {
	case len(args) == 0:
		return core.SearchRequest{}, core.NewUsageError(core.ExitNoTerm, "missing search term")
	case len(args) > 1:
		return core.SearchRequest{}, core.NewUsageError(core.ExitTooManyTerms, "expected one search term, got %d", len(args))
	}

	term := args[0]
	if err := security.ValidateSearchTerm(term); err != nil {
		return core.SearchRequest{}, core.NewUsageError(core.ExitNoTerm, "%v", err)
	}

	mode := core.MatchSubstring
	if exact {
		mode = core.MatchExact
	}
	return core.SearchRequest{Term: term, Mode: mode}, nil
}

func usageFailure(cmd *cobra.Command, out io.Writer, err error) error {
	ui.NewPrinter(out).Error("%v", err)
	_ = cmd.Usage()
	return err
}

func resolveSources(flagValues []string, cfg *config.Config) ([]core.Source, error) {
	names := flagValues
	if len(names) == 0 && cfg != nil {
		names = cfg.Removal.Sources
	}

	sources := make([]core.Source, 0, len(names))
	for _, name := range names {
		src, err := core.ParseSource(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func withTimeout(cfg *config.Config, secs int) *config.Config {
	if secs <= 0 || cfg == nil {
		return cfg
	}
	c := *cfg
	c.Search.TimeoutSecs = secs
	c.Removal.TimeoutSecs = secs
	return &c
}

func runPurge(ctx context.Context, cfg *config.Config, log *zerolog.Logger, deps Deps, req core.SearchRequest, sources []core.Source, opts core.RemoveOptions) error {
	log.Info().
		Str("term", req.Term).
		Str("mode", req.Mode.String()).
		Bool("dry_run", opts.DryRun).
		Msg("starting search")

	printer := ui.NewPrinter(deps.Out)
	b := base.NewWithDeps(cfg, log, deps.Fs, deps.Runner, deps.Out)
	fin := finalize.NewManager(log)
	registry := backends.NewRegistry(b, fin)

	searcher := search.New(registry.Select(sources), printer, log)
	searcher.SpinnerOut = deps.Spinner
	found := searcher.Search(ctx, req)

	confirmer := deps.Confirmer
	if confirmer == nil {
		confirmer = ui.NewConfirmer(os.Stdin, deps.Out)
	}

	remove.New(registry, fin, confirmer, printer, log).Run(ctx, req.Term, found, opts)
	return nil
}
