package plugin

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single script execution.
const DefaultTimeout = 5 * time.Second

// Host runs one script in an isolated Lua state.
//
// gopher-lua states are not goroutine-safe; Host serializes every call.
type Host struct {
	mu      sync.Mutex
	L       *lua.LState
	name    string
	modules []string
	timeout time.Duration
	logger  zerolog.Logger
	closed  bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithTimeout sets the per-execution timeout. Zero disables it.
func WithTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		h.timeout = d
	}
}

// WithHostLogger sets the logger that receives script output.
func WithHostLogger(logger zerolog.Logger) HostOption {
	return func(h *Host) {
		h.logger = logger
	}
}

// NewHost creates a sandboxed state and injects the modules the checker
// allows.
func NewHost(reg *Registry, checker *PermissionChecker, opts ...HostOption) (*Host, error) {
	h := &Host{
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}
	if checker != nil {
		h.name = checker.PluginName()
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With().Str("plugin", h.name).Logger()

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	if err := openSafeLibraries(L); err != nil {
		L.Close()
		return nil, err
	}
	installSandbox(L, h.logger)

	injected, err := reg.InjectAll(L, checker)
	if err != nil {
		L.Close()
		return nil, err
	}

	h.L = L
	h.modules = injected
	return h, nil
}

// Name returns the script name.
func (h *Host) Name() string {
	return h.name
}

// Modules returns the ks modules visible to the script.
func (h *Host) Modules() []string {
	return append([]string(nil), h.modules...)
}

// DoString executes a chunk of Lua.
func (h *Host) DoString(ctx context.Context, code string) error {
	return h.exec(ctx, func() error { return h.L.DoString(code) })
}

// DoFile executes a Lua file.
func (h *Host) DoFile(ctx context.Context, path string) error {
	return h.exec(ctx, func() error { return h.L.DoFile(path) })
}

func (h *Host) exec(ctx context.Context, fn func() error) (err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	if err := fn(); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("plugin %s: %w", h.name, cerr)
		}
		return fmt.Errorf("plugin %s: %w", h.name, err)
	}
	return nil
}

// Close releases the Lua state. Close is idempotent.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	h.L.Close()
	return nil
}

// openSafeLibraries opens the libraries that cannot reach the host system.
// io, os and debug stay closed.
func openSafeLibraries(L *lua.LState) error {
	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name))
		if err != nil {
			return fmt.Errorf("open %s: %w", lib.name, err)
		}
	}
	return nil
}

// installSandbox removes file loading and routes print to the logger.
func installSandbox(L *lua.LState, logger zerolog.Logger) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		logger.Info().Msg(strings.Join(parts, "\t"))
		return 0
	}))
}
