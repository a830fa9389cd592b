package helpers

import (
	"context"
	"io"
	"strings"
)

// MockCommandRunner is a mock implementation of CommandRunner for testing.
// Every invocation is appended to Calls as "name arg1 arg2".
type MockCommandRunner struct {
	CommandExistsFunc        func(name string) bool
	RunCommandFunc           func(ctx context.Context, name string, args ...string) (string, error)
	RunCommandWithOutputFunc func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
	RunCommandStreamingFunc  func(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error
	GetExitCodeFunc          func(err error) int

	Calls []string
}

func (m *MockCommandRunner) record(name string, args []string) {
	m.Calls = append(m.Calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
}

// CallsWithPrefix returns the recorded invocations starting with prefix
func (m *MockCommandRunner) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range m.Calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// CommandExists implements CommandRunner.CommandExists
func (m *MockCommandRunner) CommandExists(name string) bool {
	if m.CommandExistsFunc != nil {
		return m.CommandExistsFunc(name)
	}
	return false
}

// RunCommand implements CommandRunner.RunCommand
func (m *MockCommandRunner) RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	m.record(name, args)
	if m.RunCommandFunc != nil {
		return m.RunCommandFunc(ctx, name, args...)
	}
	return "", nil
}

// RunCommandWithOutput implements CommandRunner.RunCommandWithOutput
func (m *MockCommandRunner) RunCommandWithOutput(ctx context.Context, name string, args ...string) (stdout, stderr string, err error) {
	m.record(name, args)
	if m.RunCommandWithOutputFunc != nil {
		return m.RunCommandWithOutputFunc(ctx, name, args...)
	}
	return "", "", nil
}

// RunCommandStreaming implements CommandRunner.RunCommandStreaming
func (m *MockCommandRunner) RunCommandStreaming(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	m.record(name, args)
	if m.RunCommandStreamingFunc != nil {
		return m.RunCommandStreamingFunc(ctx, stdout, stderr, name, args...)
	}
	return nil
}

// GetExitCode implements CommandRunner.GetExitCode
func (m *MockCommandRunner) GetExitCode(err error) int {
	if m.GetExitCodeFunc != nil {
		return m.GetExitCodeFunc(err)
	}
	return ExitCode(err)
}
