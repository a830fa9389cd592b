package snap

import (
	"context"
	"testing"

	"github.com/quantmind-br/pkgpurge/internal/backends/base"
	"github.com/quantmind-br/pkgpurge/internal/config"
	"github.com/quantmind-br/pkgpurge/internal/core"
	"github.com/quantmind-br/pkgpurge/internal/helpers"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

const findOutput = `Name              Version   Publisher     Notes  Summary
firefox           131.0     mozilla✓      -      Mozilla Firefox web browser
firefox-esr       128.3     mozilla✓      -      Extended support release
----              ----      ----          ----   ----
`

func newTestBackend(runner helpers.CommandRunner, elevate string) *SnapBackend {
	log := zerolog.Nop()
	b := base.NewWithDeps(&config.Config{}, &log, afero.NewMemMapFs(), runner, nil)
	b.Elevate = elevate
	return New(b)
}

func TestSnapBackend_Name(t *testing.T) {
	t.Parallel()

	s := newTestBackend(&helpers.MockCommandRunner{}, "")
	assert.Equal(t, "snap", s.Name())
	assert.Equal(t, core.SourceSnap, s.Source())
}

func TestParse(t *testing.T) {
	t.Parallel()

	s := newTestBackend(&helpers.MockCommandRunner{}, "")

	assert.Equal(t, []base.Candidate{{ID: "firefox"}, {ID: "firefox-esr"}}, s.Parse(findOutput))
	assert.Empty(t, s.Parse(""))
	assert.Empty(t, s.Parse("Name  Version\n====  =======\n\n"))
}

func TestQuery(t *testing.T) {
	t.Parallel()

	runner := &helpers.MockCommandRunner{
		CommandExistsFunc: func(string) bool { return true },
		RunCommandWithOutputFunc: func(_ context.Context, _ string, args ...string) (string, string, error) {
			if args[1] == "zzz" {
				return "No matching snaps found for \"zzz\"\n", "", nil
			}
			return findOutput, "", nil
		},
	}
	s := newTestBackend(runner, "")

	res := s.Query(context.Background(), "firefox")
	assert.Equal(t, core.OutcomeSuccess, res.Outcome)
	assert.Equal(t, findOutput, s.Display(res.Output))

	res = s.Query(context.Background(), "zzz")
	assert.Equal(t, core.OutcomeNotFound, res.Outcome)

	assert.Equal(t, []string{"snap find firefox", "snap find zzz"}, runner.Calls)
}

func TestQuery_Unavailable(t *testing.T) {
	t.Parallel()

	runner := &helpers.MockCommandRunner{}
	s := newTestBackend(runner, "")

	res := s.Query(context.Background(), "firefox")
	assert.Equal(t, core.OutcomeUnavailable, res.Outcome)
	assert.ErrorIs(t, res.Err, core.ErrToolUnavailable)
	assert.Empty(t, runner.Calls)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	pkg := core.FoundPackage{Source: core.SourceSnap, ID: "firefox"}

	tests := []struct {
		name    string
		elevate string
		want    string
	}{
		{name: "elevated", elevate: "sudo", want: "sudo snap remove firefox"},
		{name: "as root", elevate: "", want: "snap remove firefox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &helpers.MockCommandRunner{CommandExistsFunc: func(string) bool { return true }}
			s := newTestBackend(runner, tt.elevate)

			res := s.Remove(context.Background(), pkg)
			assert.Equal(t, core.OutcomeSuccess, res.Outcome)
			assert.Equal(t, []string{tt.want}, runner.Calls)
		})
	}
}

func TestIsSeparator(t *testing.T) {
	t.Parallel()

	assert.True(t, isSeparator("----"))
	assert.True(t, isSeparator("==="))
	assert.False(t, isSeparator("firefox"))
	assert.False(t, isSeparator("-x-"))
}
