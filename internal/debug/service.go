package debug

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/stormbench/internal/event"
	"github.com/dshills/stormbench/internal/launch"
)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLauncher sets the adapter-facing launcher. Without one, sessions are
// tracked but nothing is started.
func WithLauncher(l Launcher) ServiceOption {
	return func(s *Service) {
		s.launcher = l
	}
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// Service owns the debug model: sessions, breakpoints, watch expressions and
// launch configurations. Every mutation fires the matching change stream after
// the internal lock is released, so listeners may read Snapshot freely.
type Service struct {
	mu sync.Mutex

	launcher Launcher
	logger   zerolog.Logger

	state          State
	workbenchState WorkbenchState

	sessions []Session
	focused  string

	launches []launch.Set
	selected string

	breakpoints          []Breakpoint
	functionBreakpoints  []FunctionBreakpoint
	exceptionBreakpoints []ExceptionBreakpoint
	activated            bool
	editingFunction      string

	watches []WatchExpression

	onDidChangeState            *event.Emitter[State]
	onDidChangeBreakpoints      *event.Emitter[struct{}]
	onDidChangeWatchExpressions *event.Emitter[struct{}]
	onDidNewSession             *event.Emitter[Session]
	onDidEndSession             *event.Emitter[Session]
	onDidChangeWorkbenchState   *event.Emitter[WorkbenchState]
	onDidSelectConfiguration    *event.Emitter[string]
}

// NewService creates an inactive debug service.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		logger:    zerolog.Nop(),
		activated: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	withLog := event.WithLogger(s.logger)
	s.onDidChangeState = event.NewEmitter[State]("debug.state", withLog)
	s.onDidChangeBreakpoints = event.NewEmitter[struct{}]("debug.breakpoints", withLog)
	s.onDidChangeWatchExpressions = event.NewEmitter[struct{}]("debug.watchExpressions", withLog)
	s.onDidNewSession = event.NewEmitter[Session]("debug.session.new", withLog)
	s.onDidEndSession = event.NewEmitter[Session]("debug.session.end", withLog)
	s.onDidChangeWorkbenchState = event.NewEmitter[WorkbenchState]("workbench.state", withLog)
	s.onDidSelectConfiguration = event.NewEmitter[string]("debug.configuration.selected", withLog)
	return s
}

// OnDidChangeState fires with the new state whenever it changes.
func (s *Service) OnDidChangeState() event.Event[State] { return s.onDidChangeState }

// OnDidChangeBreakpoints fires after any breakpoint collection changes.
func (s *Service) OnDidChangeBreakpoints() event.Event[struct{}] { return s.onDidChangeBreakpoints }

// OnDidChangeWatchExpressions fires after the watch list changes.
func (s *Service) OnDidChangeWatchExpressions() event.Event[struct{}] {
	return s.onDidChangeWatchExpressions
}

// OnDidNewSession fires when a session is registered.
func (s *Service) OnDidNewSession() event.Event[Session] { return s.onDidNewSession }

// OnDidEndSession fires when a session is removed.
func (s *Service) OnDidEndSession() event.Event[Session] { return s.onDidEndSession }

// OnDidChangeWorkbenchState fires when the open folder/workspace changes.
func (s *Service) OnDidChangeWorkbenchState() event.Event[WorkbenchState] {
	return s.onDidChangeWorkbenchState
}

// OnDidSelectConfiguration fires with the selected configuration name when the
// selection or the set of launches changes.
func (s *Service) OnDidSelectConfiguration() event.Event[string] { return s.onDidSelectConfiguration }

// State returns the current state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the current debug state.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() Snapshot {
	return Snapshot{
		State:                     s.state,
		WorkbenchState:            s.workbenchState,
		Sessions:                  slices.Clone(s.sessions),
		FocusedSession:            s.focused,
		Launches:                  slices.Clone(s.launches),
		SelectedConfiguration:     s.selected,
		Breakpoints:               slices.Clone(s.breakpoints),
		FunctionBreakpoints:       slices.Clone(s.functionBreakpoints),
		ExceptionBreakpoints:      slices.Clone(s.exceptionBreakpoints),
		BreakpointsActivated:      s.activated,
		EditingFunctionBreakpoint: s.editingFunction,
		WatchExpressions:          slices.Clone(s.watches),
	}
}

// setStateLocked updates the state and reports whether it changed.
func (s *Service) setStateLocked(state State) bool {
	if s.state == state {
		return false
	}
	s.state = state
	return true
}

// settleStateLocked derives the service state from the focused session.
func (s *Service) settleStateLocked() bool {
	for _, sess := range s.sessions {
		if sess.ID == s.focused {
			return s.setStateLocked(sess.State)
		}
	}
	return s.setStateLocked(StateInactive)
}

func (s *Service) fireState(changed bool) {
	if changed {
		s.onDidChangeState.Fire(s.State())
	}
}

// Sessions

// StartDebugging launches the named configuration. An empty name uses the
// selected configuration. With noDebug the program runs without breakpoints.
func (s *Service) StartDebugging(ctx context.Context, name string, noDebug bool) (Session, error) {
	s.mu.Lock()
	cfg, err := s.resolveConfigurationLocked(name)
	if err != nil {
		s.mu.Unlock()
		return Session{}, opError("start", name, err)
	}

	sess := Session{
		ID:            uuid.NewString(),
		Name:          cfg.Name,
		Configuration: cfg,
		NoDebug:       noDebug,
		State:         StateInitializing,
	}
	s.sessions = append(s.sessions, sess)
	s.focused = sess.ID
	changed := s.setStateLocked(StateInitializing)
	launcher := s.launcher
	s.mu.Unlock()

	s.logger.Info().Str("session", sess.ID).Str("configuration", cfg.Name).Bool("noDebug", noDebug).Msg("starting debug session")
	s.fireState(changed)
	s.onDidNewSession.Fire(sess)

	if launcher != nil {
		if err := launcher.Launch(ctx, sess); err != nil {
			s.logger.Error().Err(err).Str("session", sess.ID).Msg("launch failed")
			s.removeSession(sess.ID)
			return Session{}, opError("start", cfg.Name, err)
		}
	}

	s.mu.Lock()
	for i := range s.sessions {
		if s.sessions[i].ID == sess.ID {
			s.sessions[i].State = StateRunning
			sess = s.sessions[i]
		}
	}
	changed = s.settleStateLocked()
	s.mu.Unlock()

	s.fireState(changed)
	return sess, nil
}

func (s *Service) resolveConfigurationLocked(name string) (launch.Configuration, error) {
	if name == "" {
		name = s.selected
	}
	if name == "" {
		for _, set := range s.launches {
			if names := set.Names(); len(names) > 0 {
				name = names[0]
				break
			}
		}
	}
	if name == "" {
		return launch.Configuration{}, ErrNoConfiguration
	}
	for _, set := range s.launches {
		if cfg, ok := set.Find(name); ok {
			return cfg, nil
		}
	}
	return launch.Configuration{}, ErrConfigurationNotFound
}

// StopSession terminates and removes a session. The session is removed even
// when the launcher fails to terminate it; that error is returned.
func (s *Service) StopSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.findSessionLocked(id)
	launcher := s.launcher
	s.mu.Unlock()
	if !ok {
		return opError("stop", id, ErrSessionNotFound)
	}

	var termErr error
	if launcher != nil {
		termErr = launcher.Terminate(ctx, sess)
	}
	s.removeSession(id)
	if termErr != nil {
		return opError("stop", id, termErr)
	}
	return nil
}

// StopAll stops every session and returns the first error.
func (s *Service) StopAll(ctx context.Context) error {
	var first error
	for _, sess := range s.Snapshot().Sessions {
		if err := s.StopSession(ctx, sess.ID); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *Service) removeSession(id string) {
	s.mu.Lock()
	var removed Session
	found := false
	s.sessions = slices.DeleteFunc(s.sessions, func(sess Session) bool {
		if sess.ID == id {
			removed, found = sess, true
			return true
		}
		return false
	})
	if s.focused == id {
		s.focused = ""
		if len(s.sessions) > 0 {
			s.focused = s.sessions[len(s.sessions)-1].ID
		}
	}
	changed := s.settleStateLocked()
	s.mu.Unlock()

	if !found {
		return
	}
	s.logger.Info().Str("session", id).Msg("debug session ended")
	s.onDidEndSession.Fire(removed)
	s.fireState(changed)
}

func (s *Service) findSessionLocked(id string) (Session, bool) {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return Session{}, false
}

// FocusSession makes the session the focused one; the service state follows it.
func (s *Service) FocusSession(id string) error {
	s.mu.Lock()
	if _, ok := s.findSessionLocked(id); !ok {
		s.mu.Unlock()
		return opError("focus", id, ErrSessionNotFound)
	}
	s.focused = id
	changed := s.settleStateLocked()
	s.mu.Unlock()

	s.fireState(changed)
	return nil
}

// SetSessionState records an adapter-reported state change (stopped, continued).
func (s *Service) SetSessionState(id string, state State) error {
	s.mu.Lock()
	found := false
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions[i].State = state
			found = true
		}
	}
	if !found {
		s.mu.Unlock()
		return opError("set state", id, ErrSessionNotFound)
	}
	changed := s.settleStateLocked()
	s.mu.Unlock()

	s.fireState(changed)
	return nil
}

// Breakpoints

// AddBreakpoint adds an enabled line breakpoint.
func (s *Service) AddBreakpoint(path string, line int) (Breakpoint, error) {
	if line < 1 {
		return Breakpoint{}, opError("add breakpoint", path, ErrInvalidLine)
	}
	bp := Breakpoint{ID: uuid.NewString(), Path: path, Line: line, Enabled: true}

	s.mu.Lock()
	s.breakpoints = append(s.breakpoints, bp)
	s.mu.Unlock()

	s.onDidChangeBreakpoints.Fire(struct{}{})
	return bp, nil
}

// AddFunctionBreakpoint adds a function breakpoint. An empty name puts the
// new breakpoint into edit mode until RenameFunctionBreakpoint names it.
func (s *Service) AddFunctionBreakpoint(name string) FunctionBreakpoint {
	fbp := FunctionBreakpoint{ID: uuid.NewString(), Name: name, Enabled: true}

	s.mu.Lock()
	s.functionBreakpoints = append(s.functionBreakpoints, fbp)
	if name == "" {
		s.editingFunction = fbp.ID
	}
	s.mu.Unlock()

	s.onDidChangeBreakpoints.Fire(struct{}{})
	return fbp
}

// RenameFunctionBreakpoint sets a function breakpoint's name and ends editing.
// Renaming to an empty name discards the breakpoint.
func (s *Service) RenameFunctionBreakpoint(id, name string) error {
	s.mu.Lock()
	idx := slices.IndexFunc(s.functionBreakpoints, func(f FunctionBreakpoint) bool { return f.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return opError("rename function breakpoint", id, ErrBreakpointNotFound)
	}
	if name == "" {
		s.functionBreakpoints = slices.Delete(s.functionBreakpoints, idx, idx+1)
	} else {
		s.functionBreakpoints[idx].Name = name
	}
	if s.editingFunction == id {
		s.editingFunction = ""
	}
	s.mu.Unlock()

	s.onDidChangeBreakpoints.Fire(struct{}{})
	return nil
}

// SetExceptionBreakpoints replaces the adapter-provided exception filters.
func (s *Service) SetExceptionBreakpoints(filters []ExceptionBreakpoint) {
	s.mu.Lock()
	s.exceptionBreakpoints = slices.Clone(filters)
	s.mu.Unlock()

	s.onDidChangeBreakpoints.Fire(struct{}{})
}

// RemoveBreakpoint removes one line or function breakpoint.
func (s *Service) RemoveBreakpoint(id string) error {
	s.mu.Lock()
	before := len(s.breakpoints) + len(s.functionBreakpoints)
	s.breakpoints = slices.DeleteFunc(s.breakpoints, func(b Breakpoint) bool { return b.ID == id })
	s.functionBreakpoints = slices.DeleteFunc(s.functionBreakpoints, func(f FunctionBreakpoint) bool { return f.ID == id })
	removed := before != len(s.breakpoints)+len(s.functionBreakpoints)
	if removed && s.editingFunction == id {
		s.editingFunction = ""
	}
	s.mu.Unlock()

	if !removed {
		return opError("remove breakpoint", id, ErrBreakpointNotFound)
	}
	s.onDidChangeBreakpoints.Fire(struct{}{})
	return nil
}

// RemoveAllBreakpoints removes every line and function breakpoint.
// Exception filters belong to the adapter and are kept.
func (s *Service) RemoveAllBreakpoints() {
	s.mu.Lock()
	s.breakpoints = nil
	s.functionBreakpoints = nil
	s.editingFunction = ""
	s.mu.Unlock()

	s.onDidChangeBreakpoints.Fire(struct{}{})
}

// EnableOrDisableBreakpoints sets the enabled flag of one breakpoint, or of
// every breakpoint of all three kinds when id is empty.
func (s *Service) EnableOrDisableBreakpoints(enable bool, id string) error {
	s.mu.Lock()
	found := id == ""
	for i := range s.breakpoints {
		if id == "" || s.breakpoints[i].ID == id {
			s.breakpoints[i].Enabled = enable
			found = true
		}
	}
	for i := range s.functionBreakpoints {
		if id == "" || s.functionBreakpoints[i].ID == id {
			s.functionBreakpoints[i].Enabled = enable
			found = true
		}
	}
	for i := range s.exceptionBreakpoints {
		if id == "" || s.exceptionBreakpoints[i].ID == id {
			s.exceptionBreakpoints[i].Enabled = enable
			found = true
		}
	}
	s.mu.Unlock()

	if !found {
		return opError("enable breakpoint", id, ErrBreakpointNotFound)
	}
	s.onDidChangeBreakpoints.Fire(struct{}{})
	return nil
}

// AreBreakpointsActivated reports whether breakpoints are globally active.
func (s *Service) AreBreakpointsActivated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activated
}

// SetBreakpointsActivated globally activates or deactivates breakpoints.
func (s *Service) SetBreakpointsActivated(activated bool) {
	s.mu.Lock()
	changed := s.activated != activated
	s.activated = activated
	s.mu.Unlock()

	if changed {
		s.onDidChangeBreakpoints.Fire(struct{}{})
	}
}

// ReapplyBreakpoints re-sends every breakpoint to each active session.
func (s *Service) ReapplyBreakpoints(ctx context.Context) error {
	snap := s.Snapshot()
	if s.launcher == nil {
		return nil
	}
	for _, sess := range snap.Sessions {
		if !sess.State.IsActive() || sess.NoDebug {
			continue
		}
		if err := s.launcher.SendBreakpoints(ctx, sess, snap); err != nil {
			return opError("reapply breakpoints", sess.ID, err)
		}
	}
	return nil
}

// Watch expressions

// AddWatchExpression appends a watch expression. An empty name means the
// expression is being edited.
func (s *Service) AddWatchExpression(name string) WatchExpression {
	w := WatchExpression{ID: uuid.NewString(), Name: name}

	s.mu.Lock()
	s.watches = append(s.watches, w)
	s.mu.Unlock()

	s.onDidChangeWatchExpressions.Fire(struct{}{})
	return w
}

// RenameWatchExpression names a watch expression. Renaming to an empty
// name removes it.
func (s *Service) RenameWatchExpression(id, name string) error {
	s.mu.Lock()
	idx := slices.IndexFunc(s.watches, func(w WatchExpression) bool { return w.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return opError("rename watch", id, ErrWatchNotFound)
	}
	if name == "" {
		s.watches = slices.Delete(s.watches, idx, idx+1)
	} else {
		s.watches[idx].Name = name
	}
	s.mu.Unlock()

	s.onDidChangeWatchExpressions.Fire(struct{}{})
	return nil
}

// RemoveWatchExpressions removes one watch expression, or all of them when id is empty.
func (s *Service) RemoveWatchExpressions(id string) error {
	s.mu.Lock()
	before := len(s.watches)
	if id == "" {
		s.watches = nil
	} else {
		s.watches = slices.DeleteFunc(s.watches, func(w WatchExpression) bool { return w.ID == id })
	}
	removed := before != len(s.watches)
	s.mu.Unlock()

	if id != "" && !removed {
		return opError("remove watch", id, ErrWatchNotFound)
	}
	s.onDidChangeWatchExpressions.Fire(struct{}{})
	return nil
}

// Workbench and launches

// SetWorkbenchState records what the editor window has open.
func (s *Service) SetWorkbenchState(ws WorkbenchState) {
	s.mu.Lock()
	changed := s.workbenchState != ws
	s.workbenchState = ws
	s.mu.Unlock()

	if changed {
		s.onDidChangeWorkbenchState.Fire(ws)
	}
}

// SetLaunches replaces the known launch sets. When the selected configuration
// no longer exists the first available name is selected instead.
func (s *Service) SetLaunches(sets []launch.Set) {
	s.mu.Lock()
	s.launches = slices.Clone(sets)
	selected := s.reselectLocked()
	s.mu.Unlock()

	s.onDidSelectConfiguration.Fire(selected)
}

// UpdateLaunch replaces the launch set with the same Source, or appends it.
func (s *Service) UpdateLaunch(set launch.Set) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.launches, func(l launch.Set) bool { return l.Source == set.Source })
	if idx >= 0 {
		s.launches[idx] = set
	} else {
		s.launches = append(s.launches, set)
	}
	selected := s.reselectLocked()
	s.mu.Unlock()

	s.onDidSelectConfiguration.Fire(selected)
}

// reselectLocked falls back to the first named configuration when the
// current selection no longer resolves.
func (s *Service) reselectLocked() string {
	if _, err := s.resolveConfigurationLocked(s.selected); err != nil || s.selected == "" {
		s.selected = ""
		for _, set := range s.launches {
			if names := set.Names(); len(names) > 0 {
				s.selected = names[0]
				break
			}
		}
	}
	return s.selected
}

// SelectConfiguration selects the configuration used by StartDebugging("").
func (s *Service) SelectConfiguration(name string) error {
	s.mu.Lock()
	if _, err := s.resolveConfigurationLocked(name); err != nil || name == "" {
		s.mu.Unlock()
		return opError("select configuration", name, ErrConfigurationNotFound)
	}
	s.selected = name
	s.mu.Unlock()

	s.onDidSelectConfiguration.Fire(name)
	return nil
}

// Close disposes every change stream.
func (s *Service) Close() {
	s.onDidChangeState.Dispose()
	s.onDidChangeBreakpoints.Dispose()
	s.onDidChangeWatchExpressions.Dispose()
	s.onDidNewSession.Dispose()
	s.onDidEndSession.Dispose()
	s.onDidChangeWorkbenchState.Dispose()
	s.onDidSelectConfiguration.Dispose()
}
