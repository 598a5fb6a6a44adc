package plugin

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stormbench/internal/actions"
)

// ActionRunner is the action surface scripts see.
type ActionRunner interface {
	List() []*actions.Action
	Get(id string) (*actions.Action, bool)
	Run(ctx context.Context, id string, arg any) error
}

// DebugModule implements ks.debug.
type DebugModule struct {
	runner  ActionRunner
	checker *PermissionChecker
}

// NewDebugModule creates the debug module. Running actions additionally
// needs CapabilityDebugRun on checker.
func NewDebugModule(runner ActionRunner, checker *PermissionChecker) *DebugModule {
	return &DebugModule{runner: runner, checker: checker}
}

// Name returns the module name.
func (m *DebugModule) Name() string {
	return "debug"
}

// RequiredCapability returns the capability required for this module.
func (m *DebugModule) RequiredCapability() Capability {
	return CapabilityDebugRead
}

// Register registers the module into the Lua state.
func (m *DebugModule) Register(L *lua.LState) error {
	mod := L.NewTable()
	L.SetField(mod, "actions", L.NewFunction(m.list))
	L.SetField(mod, "enabled", L.NewFunction(m.enabled))
	L.SetField(mod, "label", L.NewFunction(m.label))
	L.SetField(mod, "run", L.NewFunction(m.run))
	L.SetGlobal("_ks_debug", mod)
	return nil
}

// actions() -> {{id=, label=, tooltip=, enabled=}, ...}
func (m *DebugModule) list(L *lua.LState) int {
	tbl := L.NewTable()
	for i, a := range m.runner.List() {
		entry := L.NewTable()
		L.SetField(entry, "id", lua.LString(a.ID()))
		L.SetField(entry, "label", lua.LString(a.Label()))
		L.SetField(entry, "tooltip", lua.LString(a.Tooltip()))
		L.SetField(entry, "enabled", lua.LBool(a.Enabled()))
		tbl.RawSetInt(i+1, entry)
	}
	L.Push(tbl)
	return 1
}

// enabled(id) -> bool
func (m *DebugModule) enabled(L *lua.LState) int {
	a, ok := m.runner.Get(L.CheckString(1))
	L.Push(lua.LBool(ok && a.Enabled()))
	return 1
}

// label(id) -> string | nil
func (m *DebugModule) label(L *lua.LState) int {
	a, ok := m.runner.Get(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(a.Label()))
	return 1
}

// run(id, [arg])
// arg may be a string, or a table {name=, value=, evaluate_name=} for
// value-copying actions.
func (m *DebugModule) run(L *lua.LState) int {
	id := L.CheckString(1)
	if m.checker == nil {
		L.RaiseError("debug.run: %v", &CapabilityError{Capability: CapabilityDebugRun, Operation: id, Message: "no permission checker"})
		return 0
	}
	if err := m.checker.CheckCapability(CapabilityDebugRun, id); err != nil {
		L.RaiseError("debug.run: %v", err)
		return 0
	}

	if err := m.runner.Run(luaContext(L), id, actionArg(L.Get(2))); err != nil {
		L.RaiseError("debug.run: %v", err)
	}
	return 0
}

func actionArg(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LString:
		return string(val)
	case *lua.LTable:
		return actions.Variable{
			Name:         lua.LVAsString(val.RawGetString("name")),
			Value:        lua.LVAsString(val.RawGetString("value")),
			EvaluateName: lua.LVAsString(val.RawGetString("evaluate_name")),
		}
	default:
		return nil
	}
}
