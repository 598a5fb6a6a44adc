// Package plugin hosts user scripts in a sandboxed Lua state.
//
// Scripts reach the workbench through the "ks" namespace, which aggregates
// the modules a script has been granted:
//
//   - ks.clipboard: read and write the system clipboard
//   - ks.debug: list, query and run debug actions
//
// Each module declares the capability it needs. A Registry only injects a
// module when the PermissionChecker grants that capability, so a script
// without the clipboard capability sees no ks.clipboard table at all.
//
// # Usage
//
//	checker := plugin.NewPermissionChecker("copy-helpers")
//	checker.Grant(plugin.CapabilityClipboard)
//
//	reg := plugin.NewRegistry()
//	_ = reg.Register(plugin.NewClipboardModule(bridge))
//
//	host, err := plugin.NewHost(reg, checker)
//	if err != nil {
//	    return err
//	}
//	defer host.Close()
//
//	err = host.DoString(ctx, `
//	    local ks = require("ks")
//	    ks.clipboard.write("hello")
//	`)
package plugin
