// Package app wires the stormbench components together and manages their
// lifecycle.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/stormbench/internal/actions"
	"github.com/dshills/stormbench/internal/clipboard"
	"github.com/dshills/stormbench/internal/config"
	"github.com/dshills/stormbench/internal/debug"
	"github.com/dshills/stormbench/internal/launch"
	"github.com/dshills/stormbench/internal/logging"
)

// Application owns the debug model, its actions and the clipboard bridge.
type Application struct {
	mu sync.Mutex

	cfg    config.Config
	logger zerolog.Logger

	clipboard *clipboard.Bridge
	debug     *debug.Service
	actions   *actions.Registry
	panels    *Panels

	watchers []*launch.Watcher
	closed   bool

	opts Options
}

// Options configures the application.
type Options struct {
	// Config holds the resolved settings.
	Config config.Config

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// Clipboard overrides the configured clipboard backend.
	Clipboard clipboard.Clipboard

	// Launcher starts debug adapters. Without one, sessions are tracked only.
	Launcher debug.Launcher

	// Evaluator re-evaluates expressions for the copy value action.
	Evaluator actions.Evaluator

	// Editor is the command used to open launch files.
	Editor string

	// WorkspacePath is the open folder. Empty means no folder is open.
	WorkspacePath string
}

// New creates an Application and starts its components.
func New(opts Options) (*Application, error) {
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	a := &Application{
		cfg:  opts.Config,
		opts: opts,
	}
	if err := a.bootstrap(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// bootstrap initializes components in dependency order.
func (a *Application) bootstrap() error {
	// 1. Logging
	a.logger = logging.New(a.cfg.Logging(a.opts.LogOutput))

	// 2. Clipboard
	cb := a.opts.Clipboard
	if cb == nil {
		switch a.cfg.Clipboard.Backend {
		case config.BackendMemory:
			cb = clipboard.NewMemory()
		default:
			system := clipboard.NewSystem()
			if system.Unsupported() {
				a.logger.Warn().Msg("no system clipboard utility found; clipboard calls will fail")
			}
			cb = system
		}
	}
	a.clipboard = clipboard.NewBridge(cb, logging.Component(a.logger, "clipboard"))

	// 3. Debug model
	svcOpts := []debug.ServiceOption{debug.WithLogger(logging.Component(a.logger, "debug"))}
	if a.opts.Launcher != nil {
		svcOpts = append(svcOpts, debug.WithLauncher(a.opts.Launcher))
	}
	a.debug = debug.NewService(svcOpts...)

	if a.opts.WorkspacePath != "" {
		a.debug.SetWorkbenchState(debug.WorkbenchFolder)
	}

	sets, err := launch.LoadAll(a.cfg.Launch.Files...)
	if err != nil {
		return &InitError{Component: "launch", Err: err}
	}
	a.debug.SetLaunches(sets)

	// 4. Actions
	a.panels = NewPanels(logging.Component(a.logger, "panels"))
	actx := actions.Context{
		Debug:     a.debug,
		Clipboard: a.clipboard,
		Evaluator: a.opts.Evaluator,
		Panel:     a.panels,
		Logger:    logging.Component(a.logger, "actions"),
	}
	if a.opts.Editor != "" {
		actx.Opener = EditorOpener{
			Command: a.opts.Editor,
			Stdin:   os.Stdin,
			Stdout:  os.Stdout,
			Stderr:  os.Stderr,
		}
	}
	a.actions, err = actions.NewDefaultRegistry(actx)
	if err != nil {
		return &InitError{Component: "actions", Err: err}
	}

	// 5. Launch file watchers
	if a.cfg.Launch.Watch {
		if err := a.watchLaunches(); err != nil {
			return &InitError{Component: "launch watcher", Err: err}
		}
	}

	a.logger.Debug().
		Int("launch_files", len(sets)).
		Int("actions", len(a.actions.List())).
		Msg("application started")
	return nil
}

func (a *Application) watchLaunches() error {
	logger := logging.Component(a.logger, "launch")
	for _, path := range a.cfg.Launch.Files {
		w, err := launch.NewWatcher(path, a.debug.UpdateLaunch, logger)
		if err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		a.watchers = append(a.watchers, w)
	}
	return nil
}

// Config returns the resolved settings.
func (a *Application) Config() config.Config { return a.cfg }

// Logger returns the application logger.
func (a *Application) Logger() zerolog.Logger { return a.logger }

// Clipboard returns the clipboard bridge.
func (a *Application) Clipboard() *clipboard.Bridge { return a.clipboard }

// Debug returns the debug model.
func (a *Application) Debug() *debug.Service { return a.debug }

// Actions returns the debug action registry.
func (a *Application) Actions() *actions.Registry { return a.actions }

// Panels returns the panel visibility tracker.
func (a *Application) Panels() *Panels { return a.panels }

// Close releases every component. Close is idempotent.
func (a *Application) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	watchers := a.watchers
	a.watchers = nil
	a.mu.Unlock()

	for _, w := range watchers {
		if err := w.Close(); err != nil {
			a.logger.Warn().Err(err).Str("path", w.Path()).Msg("close launch watcher")
		}
	}
	if a.actions != nil {
		a.actions.Dispose()
	}
	if a.debug != nil {
		if err := a.debug.StopAll(context.Background()); err != nil {
			a.logger.Warn().Err(err).Msg("stop debug sessions")
		}
		a.debug.Close()
	}
	if a.clipboard != nil {
		a.clipboard.Dispose()
	}
}

// IsClosed reports whether Close has been called.
func (a *Application) IsClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}
