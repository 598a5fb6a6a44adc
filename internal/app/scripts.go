package app

import (
	"context"
	"fmt"

	"github.com/dshills/stormbench/internal/logging"
	"github.com/dshills/stormbench/internal/plugin"
)

// RunScript runs the configured script with the capabilities granted to it
// in the config file.
func (a *Application) RunScript(ctx context.Context, name string) error {
	sc, ok := a.cfg.Script(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrScriptNotFound, name)
	}

	caps := make([]plugin.Capability, 0, len(sc.Capabilities))
	for _, raw := range sc.Capabilities {
		c, err := plugin.ParseCapability(raw)
		if err != nil {
			return fmt.Errorf("script %s: %w", name, err)
		}
		caps = append(caps, c)
	}
	return a.RunScriptFile(ctx, name, sc.Path, caps...)
}

// RunScriptFile runs the Lua file at path in a fresh host.
func (a *Application) RunScriptFile(ctx context.Context, name, path string, caps ...plugin.Capability) error {
	if a.IsClosed() {
		return ErrClosed
	}

	checker := plugin.NewPermissionChecker(name)
	checker.GrantAll(caps)

	host, err := a.newHost(checker)
	if err != nil {
		return err
	}
	defer host.Close()

	a.logger.Debug().
		Str("script", name).
		Strs("modules", host.Modules()).
		Msg("running script")
	return host.DoFile(ctx, path)
}

func (a *Application) newHost(checker *plugin.PermissionChecker) (*plugin.Host, error) {
	reg := plugin.NewRegistry()
	modules := []plugin.Module{
		plugin.NewClipboardModule(a.clipboard),
		plugin.NewDebugModule(a.actions, checker),
	}
	for _, m := range modules {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}

	return plugin.NewHost(reg, checker,
		plugin.WithTimeout(a.cfg.PluginTimeout()),
		plugin.WithHostLogger(logging.Component(a.logger, "plugin")),
	)
}
