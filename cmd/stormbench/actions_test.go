package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dshills/stormbench/internal/actions"
	"github.com/dshills/stormbench/internal/app"
	"github.com/dshills/stormbench/internal/clipboard"
	"github.com/dshills/stormbench/internal/config"
)

func newCLITestApp(t *testing.T) *app.Application {
	t.Helper()
	cfg := config.Default()
	cfg.Launch.Files = []string{filepath.Join(t.TempDir(), "launch.toml")}
	a, err := app.New(app.Options{Config: cfg, LogOutput: io.Discard, Clipboard: clipboard.NewMemory()})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestSeedOptions(t *testing.T) {
	a := newCLITestApp(t)
	seed := seedOptions{
		breakpoints: []string{"main.go:12"},
		functions:   []string{"main.run"},
		watches:     []string{"len(items)"},
		deactivate:  true,
	}
	require.NoError(t, seed.apply(context.Background(), a))

	snap := a.Debug().Snapshot()
	require.Len(t, snap.Breakpoints, 1)
	assert.Equal(t, 12, snap.Breakpoints[0].Line)
	assert.Len(t, snap.FunctionBreakpoints, 1)
	assert.Len(t, snap.WatchExpressions, 1)
	assert.False(t, snap.BreakpointsActivated)

	drive := seedOptions{breakpoints: []string{`C:\src\main.go:7`}}
	require.NoError(t, drive.apply(context.Background(), a))
	snap = a.Debug().Snapshot()
	require.Len(t, snap.Breakpoints, 2)
	assert.Equal(t, `C:\src\main.go`, snap.Breakpoints[1].Path)
	assert.Equal(t, 7, snap.Breakpoints[1].Line)

	bad := seedOptions{breakpoints: []string{"main.go"}}
	assert.Error(t, bad.apply(context.Background(), a))
	bad = seedOptions{breakpoints: []string{"main.go:x"}}
	assert.Error(t, bad.apply(context.Background(), a))
	bad = seedOptions{breakpoints: []string{":3"}}
	assert.Error(t, bad.apply(context.Background(), a))
}

func TestWriteActionsJSON(t *testing.T) {
	a := newCLITestApp(t)
	_, err := a.Debug().AddBreakpoint("main.go", 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeActionsJSON(&buf, a.Actions().List()))

	out := buf.String()
	require.True(t, gjson.Valid(out))
	assert.Equal(t, int64(17), gjson.Get(out, "#").Int())

	removeAll := gjson.Get(out, `#(id=="`+actions.ActionRemoveAllBreakpoints+`")`)
	require.True(t, removeAll.Exists())
	assert.True(t, removeAll.Get("enabled").Bool())
	assert.Equal(t, "Remove All Breakpoints", removeAll.Get("label").String())
}

func TestWriteActionsTable(t *testing.T) {
	a := newCLITestApp(t)

	var buf bytes.Buffer
	require.NoError(t, writeActionsTable(&buf, a.Actions().List()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 18)
	assert.True(t, strings.HasPrefix(lines[0], "ENABLED"))
}

func TestVersionCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "stormbench dev")
}
