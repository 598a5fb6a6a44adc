package plugin

import (
	"context"

	lua "github.com/yuin/gopher-lua"
)

// TextClipboard is the clipboard surface scripts see.
type TextClipboard interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, value string) error
}

// ClipboardModule implements ks.clipboard.
type ClipboardModule struct {
	clipboard TextClipboard
}

// NewClipboardModule creates the clipboard module.
func NewClipboardModule(cb TextClipboard) *ClipboardModule {
	return &ClipboardModule{clipboard: cb}
}

// Name returns the module name.
func (m *ClipboardModule) Name() string {
	return "clipboard"
}

// RequiredCapability returns the capability required for this module.
func (m *ClipboardModule) RequiredCapability() Capability {
	return CapabilityClipboard
}

// Register registers the module into the Lua state.
func (m *ClipboardModule) Register(L *lua.LState) error {
	mod := L.NewTable()
	L.SetField(mod, "read", L.NewFunction(m.read))
	L.SetField(mod, "write", L.NewFunction(m.write))
	L.SetGlobal("_ks_clipboard", mod)
	return nil
}

// read() -> string
func (m *ClipboardModule) read(L *lua.LState) int {
	text, err := m.clipboard.ReadText(luaContext(L))
	if err != nil {
		L.RaiseError("clipboard.read: %v", err)
		return 0
	}
	L.Push(lua.LString(text))
	return 1
}

// write(text)
func (m *ClipboardModule) write(L *lua.LState) int {
	text := L.CheckString(1)
	if err := m.clipboard.WriteText(luaContext(L), text); err != nil {
		L.RaiseError("clipboard.write: %v", err)
	}
	return 0
}

// luaContext returns the context attached to the running state.
func luaContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
