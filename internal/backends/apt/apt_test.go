package apt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/quantmind-br/pkgpurge/internal/backends/base"
	"github.com/quantmind-br/pkgpurge/internal/cleanup"
	"github.com/quantmind-br/pkgpurge/internal/config"
	"github.com/quantmind-br/pkgpurge/internal/core"
	"github.com/quantmind-br/pkgpurge/internal/finalize"
	"github.com/quantmind-br/pkgpurge/internal/helpers"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	calls []string
	files [][]string
}

func (f *fakeCleaner) Clean(_ context.Context, pkgName string, etcPaths []string) cleanup.Report {
	f.calls = append(f.calls, pkgName)
	f.files = append(f.files, etcPaths)
	return cleanup.Report{}
}

type fakeRefresher struct {
	dirs [][]string
}

func (f *fakeRefresher) Update(_ context.Context, dirs []string, _ *zerolog.Logger) error {
	f.dirs = append(f.dirs, dirs)
	return nil
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Search.RefreshAptIndex = true
	cfg.Search.AptDisplayLimit = 20
	return cfg
}

func newTestBackend(cfg *config.Config, runner helpers.CommandRunner, cleaner Cleaner, refresher DesktopRefresher, fin *finalize.Manager) *AptBackend {
	log := zerolog.Nop()
	b := base.NewWithDeps(cfg, &log, afero.NewMemMapFs(), runner, nil)
	b.Elevate = "sudo"
	return New(b, cleaner, refresher, fin)
}

func TestAptBackend_Name(t *testing.T) {
	t.Parallel()

	a := newTestBackend(newTestConfig(), &helpers.MockCommandRunner{}, nil, nil, nil)
	assert.Equal(t, "apt-cache", a.Name())
	assert.Equal(t, core.SourceApt, a.Source())
}

func TestParse(t *testing.T) {
	t.Parallel()

	a := newTestBackend(newTestConfig(), &helpers.MockCommandRunner{}, nil, nil, nil)

	output := "firefox - Safe and easy web browser from Mozilla\n" +
		"firefox-esr - Mozilla Firefox web browser - Extended Support Release\n" +
		"libgtk-3-0t64 - GTK graphical user interface library\n" +
		"g++-13 - GNU C++ compiler\n" +
		"\n" +
		"WARNING: apt does not have a stable CLI interface.\n" +
		"Bad_Name - uppercase is not valid\n"

	assert.Equal(t, []base.Candidate{
		{ID: "firefox"},
		{ID: "firefox-esr"},
		{ID: "libgtk-3-0t64"},
		{ID: "g++-13"},
	}, a.Parse(output))
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig()
	cfg.Search.AptDisplayLimit = 3
	a := newTestBackend(cfg, &helpers.MockCommandRunner{}, nil, nil, nil)

	var lines []string
	for i := 0; i < 5; i++ {
		lines = append(lines, fmt.Sprintf("pkg%d - description %d", i, i))
	}
	output := strings.Join(lines, "\n") + "\n"

	got := a.Display(output)
	assert.Equal(t, "pkg0 - description 0\npkg1 - description 1\npkg2 - description 2\n... (showing 3 of 5 results)", got)

	short := "pkg0 - description 0\n"
	assert.Equal(t, "pkg0 - description 0", a.Display(short))
}

func TestDisplay_DefaultLimit(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig()
	cfg.Search.AptDisplayLimit = 0
	a := newTestBackend(cfg, &helpers.MockCommandRunner{}, nil, nil, nil)

	var b strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "pkg%d - d\n", i)
	}

	got := a.Display(b.String())
	assert.True(t, strings.HasSuffix(got, "... (showing 20 of 25 results)"))
	assert.Equal(t, 21, len(strings.Split(got, "\n")))
}

func TestQuery_RefreshesWhenEmpty(t *testing.T) {
	t.Parallel()

	searches := 0
	runner := &helpers.MockCommandRunner{
		CommandExistsFunc: func(string) bool { return true },
		RunCommandWithOutputFunc: func(context.Context, string, ...string) (string, string, error) {
			searches++
			if searches == 1 {
				return "", "", nil
			}
			return "vlc - multimedia player\n", "", nil
		},
	}
	a := newTestBackend(newTestConfig(), runner, nil, nil, nil)

	res := a.Query(context.Background(), "vlc")
	assert.Equal(t, core.OutcomeSuccess, res.Outcome)
	assert.Equal(t, []string{
		"apt-cache search vlc",
		"sudo apt-get update -qq",
		"apt-cache search vlc",
	}, runner.Calls)
}

func TestQuery_NoRefreshWhenResultsOrDisabled(t *testing.T) {
	t.Parallel()

	t.Run("results on first search", func(t *testing.T) {
		runner := &helpers.MockCommandRunner{
			CommandExistsFunc: func(string) bool { return true },
			RunCommandWithOutputFunc: func(context.Context, string, ...string) (string, string, error) {
				return "vlc - multimedia player\n", "", nil
			},
		}
		a := newTestBackend(newTestConfig(), runner, nil, nil, nil)

		a.Query(context.Background(), "vlc")
		assert.Equal(t, []string{"apt-cache search vlc"}, runner.Calls)
	})

	t.Run("refresh disabled", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.Search.RefreshAptIndex = false
		runner := &helpers.MockCommandRunner{CommandExistsFunc: func(string) bool { return true }}
		a := newTestBackend(cfg, runner, nil, nil, nil)

		res := a.Query(context.Background(), "zzz")
		assert.Equal(t, core.OutcomeNotFound, res.Outcome)
		assert.Equal(t, []string{"apt-cache search zzz"}, runner.Calls)
	})
}

// dpkgRunner simulates dpkg and apt-get for an installed set of packages
func dpkgRunner(installed map[string]bool, purgeErr error) *helpers.MockCommandRunner {
	return &helpers.MockCommandRunner{
		CommandExistsFunc: func(string) bool { return true },
		RunCommandFunc: func(_ context.Context, name string, args ...string) (string, error) {
			if name != "dpkg" {
				return "", nil
			}
			pkg := args[1]
			switch args[0] {
			case "-s":
				if !installed[pkg] {
					return "", errors.New("exit status 1")
				}
				return "Package: " + pkg + "\nStatus: install ok installed\n", nil
			case "-L":
				return "/.\n/etc\n/etc/" + pkg + "\n/usr/bin/" + pkg + "\n", nil
			}
			return "", nil
		},
		RunCommandStreamingFunc: func(_ context.Context, _, _ io.Writer, _ string, args ...string) error {
			if len(args) > 1 && args[1] == "purge" {
				return purgeErr
			}
			return nil
		},
	}
}

func TestRemove_Success(t *testing.T) {
	t.Parallel()

	runner := dpkgRunner(map[string]bool{"vlc": true}, nil)
	cleaner := &fakeCleaner{}
	refresher := &fakeRefresher{}
	log := zerolog.Nop()
	fin := finalize.NewManager(&log)

	a := newTestBackend(newTestConfig(), runner, cleaner, refresher, fin)
	res := a.Remove(context.Background(), core.FoundPackage{Source: core.SourceApt, ID: "vlc"})

	require.NoError(t, res.Err)
	assert.Equal(t, core.OutcomeSuccess, res.Outcome)
	assert.Equal(t, []string{
		"dpkg -s vlc",
		"dpkg -L vlc",
		"sudo apt-get purge -y vlc",
	}, runner.Calls)

	assert.Equal(t, []string{"vlc"}, cleaner.calls)
	assert.Equal(t, [][]string{{"/.", "/etc", "/etc/vlc", "/usr/bin/vlc"}}, cleaner.files)
	assert.Equal(t, []string{ActionDesktopDatabase, ActionAutoremove, ActionAutoclean}, fin.Pending())

	fin.Run(context.Background())
	assert.Equal(t, []string{"sudo apt-get autoremove -y", "sudo apt-get autoclean"}, runner.CallsWithPrefix("sudo apt-get auto"))
	assert.Len(t, refresher.dirs, 1)
}

func TestRemove_NotInstalledIsSkipped(t *testing.T) {
	t.Parallel()

	runner := dpkgRunner(map[string]bool{}, nil)
	cleaner := &fakeCleaner{}
	fin := finalize.NewManager(nil)

	a := newTestBackend(newTestConfig(), runner, cleaner, &fakeRefresher{}, fin)
	res := a.Remove(context.Background(), core.FoundPackage{Source: core.SourceApt, ID: "vlc-data"})

	assert.Equal(t, core.OutcomeSkipped, res.Outcome)
	assert.ErrorIs(t, res.Err, core.ErrNotInstalled)
	assert.Equal(t, []string{"dpkg -s vlc-data"}, runner.Calls)
	assert.Empty(t, cleaner.calls)
	assert.Empty(t, fin.Pending())
}

func TestRemove_PurgeFailure(t *testing.T) {
	t.Parallel()

	runner := dpkgRunner(map[string]bool{"vlc": true}, errors.New("exit status 100"))
	cleaner := &fakeCleaner{}
	fin := finalize.NewManager(nil)

	a := newTestBackend(newTestConfig(), runner, cleaner, &fakeRefresher{}, fin)
	res := a.Remove(context.Background(), core.FoundPackage{Source: core.SourceApt, ID: "vlc"})

	assert.Equal(t, core.OutcomeFailed, res.Outcome)
	assert.Empty(t, cleaner.calls)
	assert.Empty(t, fin.Pending())
}

func TestRemove_InvalidName(t *testing.T) {
	t.Parallel()

	runner := dpkgRunner(nil, nil)
	a := newTestBackend(newTestConfig(), runner, nil, nil, nil)

	res := a.Remove(context.Background(), core.FoundPackage{Source: core.SourceApt, ID: "-oDebug"})
	assert.Equal(t, core.OutcomeFailed, res.Outcome)
	assert.Empty(t, runner.Calls)
}

func TestRemove_ToolMissing(t *testing.T) {
	t.Parallel()

	runner := &helpers.MockCommandRunner{}
	a := newTestBackend(newTestConfig(), runner, nil, nil, nil)

	res := a.Remove(context.Background(), core.FoundPackage{Source: core.SourceApt, ID: "vlc"})
	assert.Equal(t, core.OutcomeUnavailable, res.Outcome)
	assert.Empty(t, runner.Calls)
}
