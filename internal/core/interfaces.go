package core

import (
	"errors"
	"fmt"
)

var (
	// ErrToolUnavailable is returned when a backend command is not in PATH
	ErrToolUnavailable = errors.New("tool not available")

	// ErrNotInstalled is returned when a package is not installed on the host
	ErrNotInstalled = errors.New("package not installed")
)

// UsageError is a malformed invocation; Code is the process exit code
type UsageError struct {
	Code int
	Msg  string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// NewUsageError creates a usage error with the given exit code
func NewUsageError(code int, format string, args ...interface{}) *UsageError {
	return &UsageError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// RemoveOptions controls the executor
type RemoveOptions struct {
	AssumeYes bool // Skip the confirmation prompt
	DryRun    bool // Print the plan without removing anything
}
