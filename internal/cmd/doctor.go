package cmd

import (
	"fmt"
	"os"

	"github.com/quantmind-br/pkgpurge/internal/config"
	"github.com/quantmind-br/pkgpurge/internal/helpers"
	"github.com/quantmind-br/pkgpurge/internal/paths"
	"github.com/quantmind-br/pkgpurge/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type toolCheck struct {
	command  string
	purpose  string
	provides string // backend this tool is required for, empty if optional
}

func elevateTool(cfg *config.Config) string {
	if cfg != nil && cfg.Removal.ElevateCmd != "" {
		return cfg.Removal.ElevateCmd
	}
	return "sudo"
}

func doctorChecks(cfg *config.Config) []toolCheck {
	return []toolCheck{
		{command: "flatpak", purpose: "search and uninstall Flatpak apps", provides: "flatpak"},
		{command: "snap", purpose: "search and remove snaps", provides: "snap"},
		{command: "apt-cache", purpose: "search the APT index", provides: "apt"},
		{command: "apt-get", purpose: "purge APT packages, autoremove, autoclean", provides: "apt"},
		{command: "dpkg", purpose: "check installed state and package files", provides: "apt"},
		{command: elevateTool(cfg), purpose: "privilege elevation for snap and apt"},
		{command: "update-desktop-database", purpose: "refresh application menus after cleanup"},
	}
}

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(cfg *config.Config, log *zerolog.Logger, deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check which package managers and helper tools are available",
		Long:  `Report which package-manager tools, the privilege-elevation command and the desktop database tool are installed.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps := deps.withDefaults()
			printer := ui.NewPrinter(deps.Out)

			printer.Header("System Diagnostics")

			rows, backendsFound := checkTools(deps.Runner, doctorChecks(cfg))
			if err := ui.RenderRows(deps.Out, []string{"Tool", "Status", "Purpose"}, rows); err != nil {
				return fmt.Errorf("render tool table: %w", err)
			}

			printer.Header("Environment")
			if os.Geteuid() == 0 {
				printer.Info("Running as root: removal commands run without elevation")
			} else {
				printer.Info("Running as uid %d: privileged commands use %s", os.Geteuid(), elevateTool(cfg))
			}
			if cfg != nil {
				printer.Info("Log file: %s", cfg.Paths.LogFile)
				printer.Info("Residual cleanup: %s (user directories under %s)",
					enabledString(cfg.Cleanup.Enabled), paths.NewResolver(cfg).HomeDir())
			}
			printer.Info("Colors: %s", enabledString(ui.AreColorsEnabled()))

			printer.Plain("")
			if len(backendsFound) == 0 {
				printer.Warning("No supported package manager found; searches will return nothing")
			} else {
				printer.Success("Usable sources: %v", backendsFound)
			}

			log.Debug().Strs("sources", backendsFound).Msg("doctor finished")
			return nil
		},
	}

	return cmd
}

// checkTools looks up every tool and returns the table rows together with the
// backends whose required tools are all present, in check order
func checkTools(runner helpers.CommandRunner, checks []toolCheck) ([]ui.Row, []string) {
	rows := make([]ui.Row, 0, len(checks))
	missing := make(map[string]bool)
	var order []string

	for _, c := range checks {
		found := runner.CommandExists(c.command)

		status := ui.Success.Sprint("found")
		if !found {
			status = ui.Error.Sprint("missing")
			if c.provides == "" {
				status = ui.Warning.Sprint("missing (optional)")
			}
		}
		rows = append(rows, ui.Row{c.command, status, c.purpose})

		if c.provides == "" {
			continue
		}
		if _, seen := missing[c.provides]; !seen {
			order = append(order, c.provides)
			missing[c.provides] = false
		}
		if !found {
			missing[c.provides] = true
		}
	}

	var usable []string
	for _, src := range order {
		if !missing[src] {
			usable = append(usable, src)
		}
	}
	return rows, usable
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
