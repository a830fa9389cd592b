package remove

import (
	"context"
	"fmt"

	"github.com/quantmind-br/pkgpurge/internal/backends"
	"github.com/quantmind-br/pkgpurge/internal/core"
	"github.com/quantmind-br/pkgpurge/internal/finalize"
	"github.com/quantmind-br/pkgpurge/internal/ui"
	"github.com/rs/zerolog"
)

// ConfirmLabel is the prompt shown before any removal
const ConfirmLabel = "Type 'yes' to remove these packages"

// Executor shows the matches, asks for confirmation and removes them
type Executor struct {
	registry  *backends.Registry
	finalizer *finalize.Manager
	confirmer ui.Confirmer
	printer   *ui.Printer
	log       *zerolog.Logger
}

// New creates an Executor. Deferred actions queued on fin by the backends
// run once after the last removal.
func New(registry *backends.Registry, fin *finalize.Manager, confirmer ui.Confirmer, printer *ui.Printer, log *zerolog.Logger) *Executor {
	return &Executor{
		registry:  registry,
		finalizer: fin,
		confirmer: confirmer,
		printer:   printer,
		log:       log,
	}
}

// Run removes pkgs in order after confirmation. A failed removal is
// reported and the loop moves on; nothing here is fatal.
func (e *Executor) Run(ctx context.Context, term string, pkgs core.FoundPackages, opts core.RemoveOptions) core.RunSummary {
	var summary core.RunSummary

	if len(pkgs) == 0 {
		e.printer.Plain("")
		e.printer.Warning("No packages found matching '%s'", term)
		return summary
	}

	e.printer.Header(fmt.Sprintf("Found %d package(s) matching '%s'", len(pkgs), term))
	e.listPackages(pkgs)

	if opts.DryRun {
		e.printer.Info("Dry run: no packages were removed")
		return summary
	}

	if !opts.AssumeYes {
		e.printer.Plain("")
		ok, err := ui.Confirm(e.confirmer, ConfirmLabel)
		if err != nil {
			e.log.Warn().Err(err).Msg("could not read confirmation")
		}
		if !ok {
			e.printer.Warning("Removal cancelled")
			e.log.Info().Str("term", term).Msg("removal cancelled by user")
			return summary
		}
	}

	e.printer.Plain("")
	total := len(pkgs)
	for i, pkg := range pkgs {
		if ctx.Err() != nil {
			e.printer.Warning("Interrupted, %d package(s) not attempted", total-i)
			break
		}

		e.printer.Step(i+1, total, "Removing %s", pkg)
		res := e.removeOne(ctx, pkg)
		summary.Record(res)
		e.report(res)
	}

	// maintenance for what was already purged still runs after an interrupt
	e.runFinalizers(context.WithoutCancel(ctx))

	notAttempted := total - summary.Attempted
	e.printer.Plain("")
	switch {
	case summary.Failed == 0 && summary.Skipped == 0 && notAttempted == 0:
		e.printer.Success("Removed %d of %d package(s)", summary.Removed, total)
	case notAttempted > 0:
		e.printer.Warning("Removed %d of %d package(s) (%d failed, %d skipped, %d not attempted)",
			summary.Removed, total, summary.Failed, summary.Skipped, notAttempted)
	default:
		e.printer.Warning("Removed %d of %d package(s) (%d failed, %d skipped)",
			summary.Removed, total, summary.Failed, summary.Skipped)
	}

	e.log.Info().
		Str("term", term).
		Int("removed", summary.Removed).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Int("not_attempted", notAttempted).
		Msg("removal finished")

	return summary
}

func (e *Executor) listPackages(pkgs core.FoundPackages) {
	if err := ui.RenderPackages(e.printer.Out, pkgs); err != nil {
		e.log.Debug().Err(err).Msg("table render failed, using plain listing")
		for i, pkg := range pkgs {
			e.printer.Plain("%d. %s", i+1, pkg)
		}
	}
}

func (e *Executor) removeOne(ctx context.Context, pkg core.FoundPackage) core.RemovalResult {
	b, err := e.registry.Get(pkg.Source)
	if err != nil {
		return core.RemovalResult{Package: pkg, Outcome: core.OutcomeUnavailable, Err: err}
	}

	e.log.Info().
		Str("package", pkg.String()).
		Msg("starting removal")

	return b.Remove(ctx, pkg)
}

func (e *Executor) report(res core.RemovalResult) {
	switch res.Outcome {
	case core.OutcomeSuccess:
		e.printer.Success("Removed %s", res.Package)
	case core.OutcomeSkipped, core.OutcomeNotFound:
		e.printer.Warning("Skipped %s: %v", res.Package, res.Err)
	default:
		e.printer.Error("Failed to remove %s: %v", res.Package, res.Err)
	}
}

func (e *Executor) runFinalizers(ctx context.Context) {
	if e.finalizer == nil || len(e.finalizer.Pending()) == 0 {
		return
	}

	e.printer.Header("Post-removal cleanup")
	for _, r := range e.finalizer.Run(ctx) {
		if r.Err != nil {
			e.printer.Warning("%s failed (ignored): %v", r.Name, r.Err)
			continue
		}
		e.printer.Success("%s done", r.Name)
	}
}
