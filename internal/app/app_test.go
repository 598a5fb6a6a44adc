package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/stormbench/internal/actions"
	"github.com/dshills/stormbench/internal/clipboard"
	"github.com/dshills/stormbench/internal/config"
	"github.com/dshills/stormbench/internal/debug"
	"github.com/dshills/stormbench/internal/plugin"
)

const launchTOML = `
[[configurations]]
name = "server"
type = "go"
request = "launch"
program = "./cmd/server"
`

func newTestApp(t *testing.T, mutate func(*config.Config, *Options)) (*Application, *clipboard.Memory, string) {
	t.Helper()

	dir := t.TempDir()
	launchPath := filepath.Join(dir, "launch.toml")
	require.NoError(t, os.WriteFile(launchPath, []byte(launchTOML), 0o600))

	cfg := config.Default()
	cfg.Launch.Files = []string{launchPath}
	mem := clipboard.NewMemory()
	opts := Options{
		LogOutput: &bytes.Buffer{},
		Clipboard: mem,
	}
	if mutate != nil {
		mutate(&cfg, &opts)
	}
	opts.Config = cfg

	a, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, mem, dir
}

func TestNewLoadsLaunches(t *testing.T) {
	a, _, _ := newTestApp(t, nil)

	snap := a.Debug().Snapshot()
	require.Len(t, snap.Launches, 1)
	assert.Equal(t, []string{"server"}, snap.Launches[0].Names())
	assert.Equal(t, "server", snap.SelectedConfiguration)
	assert.Len(t, a.Actions().List(), 17)
	assert.Equal(t, debug.WorkbenchEmpty, snap.WorkbenchState)
}

func TestWorkspaceEnablesConfigure(t *testing.T) {
	a, _, _ := newTestApp(t, func(_ *config.Config, o *Options) {
		o.WorkspacePath = "."
	})

	configure, ok := a.Actions().Get(actions.ActionConfigure)
	require.True(t, ok)
	assert.True(t, configure.Enabled())
}

func TestNewRejectsBadLaunchFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "launch.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[[configurations]\n"), 0o600))

	cfg := config.Default()
	cfg.Launch.Files = []string{bad}
	_, err := New(Options{Config: cfg, LogOutput: &bytes.Buffer{}, Clipboard: clipboard.NewMemory()})

	var initErr *InitError
	require.True(t, errors.As(err, &initErr))
	assert.Equal(t, "launch", initErr.Component)
}

func TestCopyValueReachesClipboard(t *testing.T) {
	a, mem, _ := newTestApp(t, nil)

	err := a.Actions().Run(context.Background(), actions.ActionCopyValue, actions.Variable{Name: "x", Value: "42"})
	require.NoError(t, err)

	text, err := mem.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "42", text)
}

func TestToggleReplUsesPanels(t *testing.T) {
	a, _, _ := newTestApp(t, nil)

	require.NoError(t, a.Actions().Run(context.Background(), actions.ActionToggleRepl, nil))
	assert.True(t, a.Panels().IsVisible(actions.ReplPanelID))
	require.NoError(t, a.Actions().Run(context.Background(), actions.ActionToggleRepl, nil))
	assert.False(t, a.Panels().IsVisible(actions.ReplPanelID))
}

func TestConfigureWithoutEditor(t *testing.T) {
	a, _, _ := newTestApp(t, func(_ *config.Config, o *Options) {
		o.WorkspacePath = "."
	})

	err := a.Actions().Run(context.Background(), actions.ActionConfigure, nil)
	assert.True(t, errors.Is(err, actions.ErrComponentNotAvailable))
}

func TestEditorOpener(t *testing.T) {
	assert.ErrorIs(t, EditorOpener{}.Open(context.Background(), "x"), ErrNoEditor)

	var out bytes.Buffer
	o := EditorOpener{Command: "echo opening", Stdout: &out}
	require.NoError(t, o.Open(context.Background(), "launch.toml"))
	assert.Equal(t, "opening launch.toml\n", out.String())
}

func TestRunScript(t *testing.T) {
	var scriptPath string
	a, mem, _ := newTestApp(t, func(c *config.Config, _ *Options) {
		scriptPath = filepath.Join(filepath.Dir(c.Launch.Files[0]), "copy.lua")
		c.Plugins.Scripts = []config.ScriptConfig{
			{Name: "copy", Path: scriptPath, Capabilities: []string{"clipboard", "debug"}},
			{Name: "bad", Path: scriptPath, Capabilities: []string{"shell"}},
		}
	})
	require.NoError(t, os.WriteFile(scriptPath, []byte(`
		local ks = require("ks")
		ks.debug.run("workbench.debug.viewlet.action.addWatchExpression")
		ks.clipboard.write("watching")
	`), 0o600))

	require.NoError(t, a.RunScript(context.Background(), "copy"))
	text, _ := mem.ReadText()
	assert.Equal(t, "watching", text)
	assert.Len(t, a.Debug().Snapshot().WatchExpressions, 1)

	var capErr *plugin.CapabilityError
	assert.True(t, errors.As(a.RunScript(context.Background(), "bad"), &capErr))
	assert.True(t, errors.Is(a.RunScript(context.Background(), "missing"), ErrScriptNotFound))
}

func TestRunScriptFileWithoutCapabilities(t *testing.T) {
	a, mem, dir := newTestApp(t, nil)
	path := filepath.Join(dir, "nosy.lua")
	require.NoError(t, os.WriteFile(path, []byte(`require("ks").clipboard.write("x")`), 0o600))

	assert.Error(t, a.RunScriptFile(context.Background(), "nosy", path))
	text, _ := mem.ReadText()
	assert.Empty(t, text)
}

func TestLaunchWatcherUpdatesConfigurations(t *testing.T) {
	a, _, _ := newTestApp(t, func(c *config.Config, _ *Options) {
		c.Launch.Watch = true
	})
	path := a.Config().Launch.Files[0]

	require.NoError(t, os.WriteFile(path, []byte(launchTOML+`
[[configurations]]
name = "worker"
`), 0o600))

	assert.Eventually(t, func() bool {
		snap := a.Debug().Snapshot()
		return len(snap.Launches) == 1 && len(snap.Launches[0].Configurations) == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestLaunchWatcherReplacesRelativeLaunchFile(t *testing.T) {
	dir := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })

	require.NoError(t, os.WriteFile("launch.toml", []byte(launchTOML), 0o600))

	cfg := config.Default()
	cfg.Launch.Watch = true
	require.Equal(t, []string{"launch.toml"}, cfg.Launch.Files)

	a, err := New(Options{Config: cfg, LogOutput: &bytes.Buffer{}, Clipboard: clipboard.NewMemory()})
	require.NoError(t, err)
	t.Cleanup(a.Close)

	_, err = a.Debug().StartDebugging(context.Background(), "server", false)
	require.NoError(t, err)
	start, ok := a.Actions().Get(actions.ActionStart)
	require.True(t, ok)
	require.True(t, start.Enabled())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "launch.toml"), []byte("configurations = []\n"), 0o600))

	assert.Eventually(t, func() bool {
		snap := a.Debug().Snapshot()
		return len(snap.Launches) == 1 && len(snap.Launches[0].Configurations) == 0
	}, 5*time.Second, 20*time.Millisecond)
	assert.Eventually(t, func() bool { return !start.Enabled() }, 5*time.Second, 20*time.Millisecond)
}

func TestCloseIdempotent(t *testing.T) {
	a, _, dir := newTestApp(t, nil)
	a.Close()
	a.Close()
	assert.True(t, a.IsClosed())
	assert.ErrorIs(t, a.RunScriptFile(context.Background(), "x", filepath.Join(dir, "x.lua")), ErrClosed)
}
