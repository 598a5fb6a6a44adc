package actions

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/stormbench/internal/debug"
	"github.com/dshills/stormbench/internal/launch"
)

// mockClipboard implements ClipboardWriter for testing.
type mockClipboard struct {
	mu      sync.Mutex
	written []string
	err     error
}

func (m *mockClipboard) WriteText(_ context.Context, v string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.written = append(m.written, v)
	return nil
}

// mockEvaluator implements Evaluator for testing.
type mockEvaluator struct {
	result string
	err    error
	calls  []string
}

func (m *mockEvaluator) Evaluate(_ context.Context, sessionID, expr string) (string, error) {
	m.calls = append(m.calls, sessionID+":"+expr)
	return m.result, m.err
}

// mockPanel implements Panel for testing.
type mockPanel struct {
	visible map[string]bool
}

func (m *mockPanel) TogglePanel(id string) (bool, error) {
	if m.visible == nil {
		m.visible = make(map[string]bool)
	}
	m.visible[id] = !m.visible[id]
	return m.visible[id], nil
}

// mockOpener implements Opener for testing.
type mockOpener struct {
	opened []string
}

func (m *mockOpener) Open(_ context.Context, path string) error {
	m.opened = append(m.opened, path)
	return nil
}

func newTestContext() (Context, *debug.Service) {
	svc := debug.NewService()
	return Context{Debug: svc, Logger: zerolog.Nop()}, svc
}

func TestStartActionEnablement(t *testing.T) {
	actx, svc := newTestContext()
	start := NewStartAction(actx)
	defer start.Dispose()

	assert.True(t, start.Enabled(), "no sessions: startable even without configurations")

	svc.SetLaunches([]launch.Set{namedLaunch("app")})
	_, err := svc.StartDebugging(context.Background(), "app", false)
	require.NoError(t, err)
	assert.True(t, start.Enabled(), "session exists but a configuration is available")

	svc.SetLaunches([]launch.Set{namedLaunch()})
	assert.False(t, start.Enabled(), "one session and its launch has zero configurations")

	require.NoError(t, svc.StopAll(context.Background()))
	assert.True(t, start.Enabled())
}

// blockingLauncher lets a test observe the service while a launch is in flight.
type blockingLauncher struct {
	during func()
}

func (b *blockingLauncher) Launch(context.Context, debug.Session) error {
	if b.during != nil {
		b.during()
	}
	return nil
}
func (b *blockingLauncher) Terminate(context.Context, debug.Session) error { return nil }
func (b *blockingLauncher) SendBreakpoints(context.Context, debug.Session, debug.Snapshot) error {
	return nil
}

func TestStartActionDisabledWhileInitializing(t *testing.T) {
	bl := &blockingLauncher{}
	svc := debug.NewService(debug.WithLauncher(bl))
	svc.SetLaunches([]launch.Set{namedLaunch("app")})
	actx := Context{Debug: svc, Logger: zerolog.Nop()}

	start := NewStartAction(actx)
	run := NewRunAction(actx)
	defer start.Dispose()
	defer run.Dispose()

	var during []bool
	bl.during = func() {
		during = append(during, start.Enabled(), run.Enabled())
	}

	require.NoError(t, start.Run(context.Background(), nil))
	assert.Equal(t, []bool{false, false}, during)
	assert.True(t, start.Enabled())
}

func TestRunActionStartsWithoutDebugging(t *testing.T) {
	actx, svc := newTestContext()
	svc.SetLaunches([]launch.Set{namedLaunch("app")})
	run := NewRunAction(actx)
	defer run.Dispose()

	require.NoError(t, run.Run(context.Background(), nil))
	snap := svc.Snapshot()
	require.Len(t, snap.Sessions, 1)
	assert.True(t, snap.Sessions[0].NoDebug)
}

func TestSelectAndStartAction(t *testing.T) {
	actx, svc := newTestContext()
	svc.SetLaunches([]launch.Set{namedLaunch("a", "b")})
	a := NewSelectAndStartAction(actx)
	defer a.Dispose()

	err := a.Run(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	require.NoError(t, a.Run(context.Background(), "b"))
	assert.Equal(t, "b", svc.Snapshot().Sessions[0].Name)
}

func TestStopAction(t *testing.T) {
	actx, svc := newTestContext()
	svc.SetLaunches([]launch.Set{namedLaunch("app")})
	stop := NewStopAction(actx)
	defer stop.Dispose()

	assert.False(t, stop.Enabled())
	err := stop.Run(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrNoSession))

	_, err = svc.StartDebugging(context.Background(), "app", false)
	require.NoError(t, err)
	assert.True(t, stop.Enabled())

	require.NoError(t, stop.Run(context.Background(), nil))
	assert.False(t, stop.Enabled())
}

func TestConfigureAction(t *testing.T) {
	actx, svc := newTestContext()
	opener := &mockOpener{}
	actx.Opener = opener
	configure := NewConfigureAction(actx)
	defer configure.Dispose()

	assert.False(t, configure.Enabled())
	svc.SetWorkbenchState(debug.WorkbenchFolder)
	assert.True(t, configure.Enabled())

	err := configure.Run(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrNoLaunchFile))

	svc.SetLaunches([]launch.Set{{Source: "a.toml"}, {Source: "b.yaml", Configurations: []launch.Configuration{{Name: "x"}}}})
	require.NoError(t, configure.Run(context.Background(), nil))
	assert.Equal(t, []string{"b.yaml"}, opener.opened, "file of the selected configuration")

	actx.Opener = nil
	noOpener := NewConfigureAction(actx)
	defer noOpener.Dispose()
	assert.True(t, errors.Is(noOpener.Run(context.Background(), nil), ErrComponentNotAvailable))
}

func TestBreakpointActions(t *testing.T) {
	actx, svc := newTestContext()
	removeAll := NewRemoveAllBreakpointsAction(actx)
	remove := NewRemoveBreakpointAction(actx)
	enableAll := NewEnableAllBreakpointsAction(actx)
	disableAll := NewDisableAllBreakpointsAction(actx)
	defer removeAll.Dispose()
	defer remove.Dispose()
	defer enableAll.Dispose()
	defer disableAll.Dispose()

	assert.False(t, removeAll.Enabled())
	assert.False(t, enableAll.Enabled())
	assert.False(t, disableAll.Enabled())

	bp, err := svc.AddBreakpoint("main.go", 12)
	require.NoError(t, err)
	assert.True(t, removeAll.Enabled())
	assert.True(t, disableAll.Enabled())
	assert.False(t, enableAll.Enabled())

	require.NoError(t, disableAll.Run(context.Background(), nil))
	assert.True(t, enableAll.Enabled())
	assert.False(t, disableAll.Enabled())

	require.NoError(t, enableAll.Run(context.Background(), nil))
	assert.False(t, enableAll.Enabled())

	assert.True(t, errors.Is(remove.Run(context.Background(), 42), ErrInvalidArgument))
	require.NoError(t, remove.Run(context.Background(), bp.ID))
	assert.False(t, remove.Enabled())

	svc.AddFunctionBreakpoint("main")
	require.NoError(t, removeAll.Run(context.Background(), nil))
	assert.Empty(t, svc.Snapshot().FunctionBreakpoints)
	assert.False(t, removeAll.Enabled())
}

func TestReapplyBreakpointsAction(t *testing.T) {
	actx, svc := newTestContext()
	svc.SetLaunches([]launch.Set{namedLaunch("app")})
	reapply := NewReapplyBreakpointsAction(actx)
	defer reapply.Dispose()

	_, err := svc.AddBreakpoint("main.go", 1)
	require.NoError(t, err)
	assert.False(t, reapply.Enabled(), "no active session")

	sess, err := svc.StartDebugging(context.Background(), "app", false)
	require.NoError(t, err)
	assert.True(t, reapply.Enabled())

	require.NoError(t, svc.SetSessionState(sess.ID, debug.StateStopped))
	assert.True(t, reapply.Enabled())
	require.NoError(t, reapply.Run(context.Background(), nil))

	svc.RemoveAllBreakpoints()
	assert.False(t, reapply.Enabled())
}

func TestAddFunctionBreakpointAction(t *testing.T) {
	actx, svc := newTestContext()
	add := NewAddFunctionBreakpointAction(actx)
	defer add.Dispose()

	assert.True(t, add.Enabled())
	require.NoError(t, add.Run(context.Background(), nil))
	assert.False(t, add.Enabled(), "disabled while the new breakpoint is unnamed")

	snap := svc.Snapshot()
	require.Len(t, snap.FunctionBreakpoints, 1)
	require.NoError(t, svc.RenameFunctionBreakpoint(snap.FunctionBreakpoints[0].ID, "main.main"))
	assert.True(t, add.Enabled())
}

func TestWatchExpressionActions(t *testing.T) {
	actx, svc := newTestContext()
	add := NewAddWatchExpressionAction(actx)
	removeAll := NewRemoveAllWatchExpressionsAction(actx)
	defer add.Dispose()
	defer removeAll.Dispose()

	assert.True(t, add.Enabled())
	assert.False(t, removeAll.Enabled())

	require.NoError(t, add.Run(context.Background(), nil))
	assert.False(t, add.Enabled())
	assert.True(t, removeAll.Enabled())

	w := svc.Snapshot().WatchExpressions[0]
	require.NoError(t, svc.RenameWatchExpression(w.ID, "len(xs)"))
	assert.True(t, add.Enabled())

	require.NoError(t, removeAll.Run(context.Background(), nil))
	assert.False(t, removeAll.Enabled())
}

func TestToggleBreakpointsActivatedAction(t *testing.T) {
	actx, svc := newTestContext()
	toggle := NewToggleBreakpointsActivatedAction(actx)
	defer toggle.Dispose()

	assert.False(t, toggle.Enabled())
	assert.Equal(t, "Deactivate Breakpoints", toggle.Label())

	_, err := svc.AddBreakpoint("main.go", 1)
	require.NoError(t, err)
	assert.True(t, toggle.Enabled())

	require.NoError(t, toggle.Run(context.Background(), nil))
	assert.False(t, svc.AreBreakpointsActivated())
	assert.Equal(t, "Activate Breakpoints", toggle.Label())
	assert.Equal(t, "Activate Breakpoints", toggle.Tooltip())

	require.NoError(t, toggle.Run(context.Background(), nil))
	assert.True(t, svc.AreBreakpointsActivated())
	assert.Equal(t, "Deactivate Breakpoints", toggle.Label())
}

func TestFocusSessionAction(t *testing.T) {
	actx, svc := newTestContext()
	svc.SetLaunches([]launch.Set{namedLaunch("a", "b")})
	focus := NewFocusSessionAction(actx)
	defer focus.Dispose()

	first, err := svc.StartDebugging(context.Background(), "a", false)
	require.NoError(t, err)
	_, err = svc.StartDebugging(context.Background(), "b", false)
	require.NoError(t, err)

	require.NoError(t, focus.Run(context.Background(), first.ID))
	assert.Equal(t, first.ID, svc.Snapshot().FocusedSession)
	assert.True(t, errors.Is(focus.Run(context.Background(), nil), ErrInvalidArgument))
	assert.True(t, errors.Is(focus.Run(context.Background(), "nope"), debug.ErrSessionNotFound))
}

func TestCopyValueAction(t *testing.T) {
	actx, svc := newTestContext()
	clip := &mockClipboard{}
	eval := &mockEvaluator{result: "full value"}
	actx.Clipboard = clip
	actx.Evaluator = eval
	copyValue := NewCopyValueAction(actx)
	defer copyValue.Dispose()

	// No session: displayed value is copied without evaluation.
	require.NoError(t, copyValue.Run(context.Background(), Variable{Name: "x", Value: "short", EvaluateName: "x"}))
	assert.Equal(t, []string{"short"}, clip.written)
	assert.Empty(t, eval.calls)

	svc.SetLaunches([]launch.Set{namedLaunch("app")})
	sess, err := svc.StartDebugging(context.Background(), "app", false)
	require.NoError(t, err)

	require.NoError(t, copyValue.Run(context.Background(), &Variable{Name: "x", Value: "short", EvaluateName: "x"}))
	assert.Equal(t, "full value", clip.written[1])
	assert.Equal(t, []string{sess.ID + ":x"}, eval.calls)

	eval.err = errors.New("not available")
	require.NoError(t, copyValue.Run(context.Background(), Variable{Name: "y", Value: "raw", EvaluateName: "y"}))
	assert.Equal(t, "raw", clip.written[2], "evaluation failure falls back to the displayed value")

	assert.True(t, errors.Is(copyValue.Run(context.Background(), "x"), ErrInvalidArgument))
}

func TestCopyValueClipboardErrorPropagates(t *testing.T) {
	actx, _ := newTestContext()
	boom := errors.New("clipboard locked")
	actx.Clipboard = &mockClipboard{err: boom}
	copyValue := NewCopyValueAction(actx)
	defer copyValue.Dispose()

	err := copyValue.Run(context.Background(), Variable{Value: "v"})
	assert.True(t, errors.Is(err, boom))

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, ActionCopyValue, runErr.ActionID)

	actx.Clipboard = nil
	noClip := NewCopyValueAction(actx)
	defer noClip.Dispose()
	assert.True(t, errors.Is(noClip.Run(context.Background(), Variable{}), ErrComponentNotAvailable))
}

func TestToggleReplAction(t *testing.T) {
	actx, _ := newTestContext()
	panel := &mockPanel{}
	actx.Panel = panel
	toggle := NewToggleReplAction(actx)
	defer toggle.Dispose()

	assert.True(t, toggle.Enabled())
	require.NoError(t, toggle.Run(context.Background(), nil))
	assert.True(t, panel.visible[ReplPanelID])
	require.NoError(t, toggle.Run(context.Background(), nil))
	assert.False(t, panel.visible[ReplPanelID])
}

func TestActionDisposeIdempotent(t *testing.T) {
	actx, svc := newTestContext()
	removeAll := NewRemoveAllBreakpointsAction(actx)
	toggle := NewToggleBreakpointsActivatedAction(actx)

	flips := 0
	removeAll.OnDidChangeEnabled().Subscribe(func(bool) { flips++ })

	assert.NotPanics(t, func() {
		removeAll.Dispose()
		removeAll.Dispose()
		toggle.Dispose()
		toggle.Dispose()
	})

	_, err := svc.AddBreakpoint("main.go", 1)
	require.NoError(t, err)
	svc.SetBreakpointsActivated(false)

	assert.False(t, removeAll.Enabled())
	assert.False(t, toggle.Enabled())
	assert.Equal(t, "Deactivate Breakpoints", toggle.Label(), "label listener released too")
	assert.Equal(t, 0, flips)

	err = removeAll.Run(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrActionDisposed))
}
