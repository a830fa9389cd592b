package helpers

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSCommandRunner(t *testing.T) {
	runner := NewOSCommandRunner()

	t.Run("CommandExists", func(t *testing.T) {
		assert.True(t, runner.CommandExists("echo"))
		assert.False(t, runner.CommandExists("nonexistentcommand123"))
		// cached lookup
		assert.True(t, runner.CommandExists("echo"))
	})

	t.Run("RunCommand", func(t *testing.T) {
		output, err := runner.RunCommand(context.Background(), "echo", "test")
		assert.NoError(t, err)
		assert.Contains(t, output, "test")
	})

	t.Run("RunCommand keeps stdout on failure", func(t *testing.T) {
		output, err := runner.RunCommand(context.Background(), "sh", "-c", "echo partial; exit 3")
		require.Error(t, err)
		assert.Contains(t, output, "partial")
		assert.Equal(t, 3, runner.GetExitCode(err))
	})

	t.Run("RunCommand missing binary", func(t *testing.T) {
		_, err := runner.RunCommand(context.Background(), "nonexistentcommand123")
		require.Error(t, err)
		assert.True(t, IsCommandNotFound(err))
		assert.Equal(t, -1, runner.GetExitCode(err))
	})

	t.Run("RunCommandWithOutput", func(t *testing.T) {
		stdout, stderr, err := runner.RunCommandWithOutput(context.Background(), "sh", "-c", "echo out; echo err >&2")
		assert.NoError(t, err)
		assert.Contains(t, stdout, "out")
		assert.Contains(t, stderr, "err")
	})

	t.Run("RunCommandStreaming", func(t *testing.T) {
		var out bytes.Buffer
		err := runner.RunCommandStreaming(context.Background(), &out, nil, "echo", "streamed")
		assert.NoError(t, err)
		assert.Contains(t, out.String(), "streamed")
	})

	t.Run("RunCommand timeout exceeded", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := runner.RunCommand(ctx, "sleep", "5")
		assert.Error(t, err)
	})
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, -1, ExitCode(errors.New("plain")))
}
