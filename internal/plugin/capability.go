package plugin

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Capability represents a permission that a script can be granted.
// Capabilities are hierarchical: granting "debug" also grants "debug.read"
// and "debug.run".
type Capability string

const (
	// CapabilityClipboard allows clipboard access.
	CapabilityClipboard Capability = "clipboard"

	// CapabilityDebug grants every debug capability.
	CapabilityDebug Capability = "debug"

	// CapabilityDebugRead allows inspecting debug actions.
	CapabilityDebugRead Capability = "debug.read"

	// CapabilityDebugRun allows running debug actions.
	CapabilityDebugRun Capability = "debug.run"
)

var knownCapabilities = map[Capability]string{
	CapabilityClipboard: "Read and write the system clipboard",
	CapabilityDebug:     "Inspect and run debug actions",
	CapabilityDebugRead: "Inspect debug actions and their enablement",
	CapabilityDebugRun:  "Run debug actions",
}

// ParseCapability validates a capability name.
func ParseCapability(name string) (Capability, error) {
	c := Capability(strings.TrimSpace(name))
	if _, ok := knownCapabilities[c]; !ok {
		return "", &CapabilityError{Capability: c, Message: "unknown capability"}
	}
	return c, nil
}

// Description returns a human readable description of the capability.
func (c Capability) Description() string {
	return knownCapabilities[c]
}

// IsChildOf reports whether c sits below parent in the hierarchy.
func (c Capability) IsChildOf(parent Capability) bool {
	return strings.HasPrefix(string(c), string(parent)+".")
}

// Implies reports whether granting c also grants required.
func (c Capability) Implies(required Capability) bool {
	return c == required || required.IsChildOf(c)
}

// CapabilityError reports a missing or invalid capability.
type CapabilityError struct {
	Capability Capability
	Operation  string
	Message    string
}

func (e *CapabilityError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("capability %q for %s: %s", e.Capability, e.Operation, e.Message)
	}
	return fmt.Sprintf("capability %q: %s", e.Capability, e.Message)
}

// PermissionChecker holds the capabilities granted to one script.
type PermissionChecker struct {
	mu           sync.RWMutex
	capabilities map[Capability]bool
	pluginName   string
}

// NewPermissionChecker creates a checker with nothing granted.
func NewPermissionChecker(pluginName string) *PermissionChecker {
	return &PermissionChecker{
		capabilities: make(map[Capability]bool),
		pluginName:   pluginName,
	}
}

// PluginName returns the script the checker belongs to.
func (pc *PermissionChecker) PluginName() string {
	return pc.pluginName
}

// Grant grants a capability.
func (pc *PermissionChecker) Grant(c Capability) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.capabilities[c] = true
}

// GrantAll grants multiple capabilities.
func (pc *PermissionChecker) GrantAll(caps []Capability) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	for _, c := range caps {
		pc.capabilities[c] = true
	}
}

// Revoke removes a capability.
func (pc *PermissionChecker) Revoke(c Capability) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	delete(pc.capabilities, c)
}

// HasCapability reports whether c is granted directly or through a parent.
func (pc *PermissionChecker) HasCapability(c Capability) bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.capabilities[c] {
		return true
	}
	for granted := range pc.capabilities {
		if granted.Implies(c) {
			return true
		}
	}
	return false
}

// CheckCapability returns a CapabilityError if c is not granted.
func (pc *PermissionChecker) CheckCapability(c Capability, op string) error {
	if !pc.HasCapability(c) {
		return &CapabilityError{Capability: c, Operation: op, Message: "not granted"}
	}
	return nil
}

// Capabilities returns the granted capabilities, sorted.
func (pc *PermissionChecker) Capabilities() []Capability {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	caps := make([]Capability, 0, len(pc.capabilities))
	for c := range pc.capabilities {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}
