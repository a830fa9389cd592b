package desktop

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/quantmind-br/pkgpurge/internal/helpers"
	"github.com/rs/zerolog"
)

const updateDesktopDatabaseCmd = "update-desktop-database"

// Refresher rebuilds the desktop-entry MIME cache after entries are removed
type Refresher struct {
	runner  helpers.CommandRunner
	elevate string
}

// NewRefresher creates a Refresher. elevate is the privilege-elevation
// command used for system directories; empty disables elevation.
func NewRefresher(runner helpers.CommandRunner, elevate string) *Refresher {
	return &Refresher{
		runner:  runner,
		elevate: elevate,
	}
}

// Available reports whether update-desktop-database is installed
func (r *Refresher) Available() bool {
	return r.runner.CommandExists(updateDesktopDatabaseCmd)
}

// Update runs update-desktop-database over each directory. A missing tool
// is not an error; individual failures are logged and the first is returned.
func (r *Refresher) Update(ctx context.Context, dirs []string, log *zerolog.Logger) error {
	if !r.Available() {
		log.Debug().Msg("update-desktop-database not found, skipping desktop database update")
		return nil
	}

	var firstErr error
	for _, dir := range dirs {
		runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)

		execName := updateDesktopDatabaseCmd
		cmdArgs := []string{dir}
		if r.elevate != "" && needsElevation(dir) {
			execName = r.elevate
			cmdArgs = append([]string{updateDesktopDatabaseCmd}, cmdArgs...)
		}

		_, err := r.runner.RunCommand(runCtx, execName, cmdArgs...)
		cancel()

		if err != nil {
			log.Warn().Err(err).Str("apps_dir", dir).Msg("desktop database update failed (non-fatal)")
			if firstErr == nil {
				firstErr = fmt.Errorf("update desktop database %s: %w", dir, err)
			}
			continue
		}

		log.Debug().Str("apps_dir", dir).Msg("desktop database updated")
	}

	return firstErr
}

func needsElevation(path string) bool {
	cleaned := filepath.Clean(path)
	systemPrefixes := []string{"/usr", "/opt", "/var", "/etc"}
	for _, prefix := range systemPrefixes {
		if cleaned == prefix || strings.HasPrefix(cleaned, prefix+"/") {
			return true
		}
	}
	return false
}
