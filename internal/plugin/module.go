package plugin

import (
	"fmt"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// APIVersion is reported to scripts as ks.api_version.
const APIVersion = 1

// Module is a Lua API module exposed under the ks namespace.
type Module interface {
	// Name returns the module name, e.g. "clipboard".
	Name() string

	// RequiredCapability returns the capability needed to use the module,
	// or the empty string if none is needed.
	RequiredCapability() Capability

	// Register installs the module into the Lua state under the
	// _ks_<name> global.
	Register(L *lua.LState) error
}

// Registry manages API modules.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

// Register adds a module.
func (r *Registry) Register(mod Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[mod.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrModuleExists, mod.Name())
	}
	r.modules[mod.Name()] = mod
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, ok := r.modules[name]
	return mod, ok
}

// List returns the registered module names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames()
}

// InjectAll registers every module the checker allows and installs the ks
// loader. A nil checker only admits modules that need no capability.
// It returns the names of the injected modules.
func (r *Registry) InjectAll(L *lua.LState, checker *PermissionChecker) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var injected []string
	for _, name := range r.sortedNames() {
		mod := r.modules[name]
		if c := mod.RequiredCapability(); c != "" {
			if checker == nil || !checker.HasCapability(c) {
				continue
			}
		}
		if err := mod.Register(L); err != nil {
			return nil, fmt.Errorf("register module %q: %w", name, err)
		}
		injected = append(injected, name)
	}

	installKSLoader(L, injected)
	return injected, nil
}

// Inject registers the named modules. Unlike InjectAll it fails when a
// module is missing or its capability is not granted.
func (r *Registry) Inject(L *lua.LState, checker *PermissionChecker, names ...string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range names {
		mod, ok := r.modules[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrModuleNotFound, name)
		}
		if c := mod.RequiredCapability(); c != "" {
			if checker == nil {
				return &CapabilityError{Capability: c, Operation: name, Message: "no permission checker"}
			}
			if err := checker.CheckCapability(c, name); err != nil {
				return err
			}
		}
		if err := mod.Register(L); err != nil {
			return fmt.Errorf("register module %q: %w", name, err)
		}
	}
	return nil
}

func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// installKSLoader gathers the _ks_* globals into one table that scripts
// load with require("ks").
func installKSLoader(L *lua.LState, names []string) {
	ks := L.NewTable()
	for _, name := range names {
		global := "_ks_" + name
		if val := L.GetGlobal(global); val != lua.LNil {
			L.SetField(ks, name, val)
			L.SetGlobal(global, lua.LNil)
		}
	}
	L.SetField(ks, "api_version", lua.LNumber(APIVersion))

	L.PreloadModule("ks", func(L *lua.LState) int {
		L.Push(ks)
		return 1
	})
}
