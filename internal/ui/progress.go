package ui

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Spinner wraps an indeterminate progressbar/v3 bar shown while a backend
// query runs. A nil *Spinner is valid and does nothing.
type Spinner struct {
	bar  *progressbar.ProgressBar
	done chan struct{}
}

// NewSpinner starts a spinner on w. It returns nil when enabled is false so
// callers do not need to branch.
func NewSpinner(w io.Writer, description string, enabled bool) *Spinner {
	if !enabled || w == nil {
		return nil
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(10),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)

	s := &Spinner{bar: bar, done: make(chan struct{})}
	go s.tick()
	return s
}

func (s *Spinner) tick() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			_ = s.bar.Add(1)
		}
	}
}

// Stop clears the spinner line
func (s *Spinner) Stop() {
	if s == nil {
		return
	}
	close(s.done)
	_ = s.bar.Finish()
}
