package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilityHierarchy(t *testing.T) {
	assert.True(t, CapabilityDebugRun.IsChildOf(CapabilityDebug))
	assert.False(t, CapabilityDebug.IsChildOf(CapabilityDebugRun))
	assert.False(t, Capability("debugger").IsChildOf(CapabilityDebug))

	assert.True(t, CapabilityDebug.Implies(CapabilityDebugRun))
	assert.True(t, CapabilityDebug.Implies(CapabilityDebug))
	assert.False(t, CapabilityDebugRun.Implies(CapabilityDebug))
	assert.False(t, CapabilityClipboard.Implies(CapabilityDebug))
}

func TestParseCapability(t *testing.T) {
	c, err := ParseCapability(" clipboard ")
	require.NoError(t, err)
	assert.Equal(t, CapabilityClipboard, c)
	assert.NotEmpty(t, c.Description())

	_, err = ParseCapability("shell")
	var capErr *CapabilityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, Capability("shell"), capErr.Capability)
}

func TestPermissionChecker(t *testing.T) {
	pc := NewPermissionChecker("helpers")
	assert.Equal(t, "helpers", pc.PluginName())
	assert.False(t, pc.HasCapability(CapabilityClipboard))

	pc.Grant(CapabilityDebug)
	assert.True(t, pc.HasCapability(CapabilityDebugRun), "parent grants child")
	assert.NoError(t, pc.CheckCapability(CapabilityDebugRun, "run"))

	pc.Revoke(CapabilityDebug)
	pc.Grant(CapabilityDebugRun)
	assert.False(t, pc.HasCapability(CapabilityDebug), "child does not grant parent")

	err := pc.CheckCapability(CapabilityClipboard, "clipboard.read")
	var capErr *CapabilityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, "clipboard.read", capErr.Operation)
	assert.Contains(t, err.Error(), "not granted")

	pc.GrantAll([]Capability{CapabilityClipboard, CapabilityDebug})
	assert.True(t, pc.HasCapability(CapabilityDebugRead))
	assert.Equal(t, []Capability{CapabilityClipboard, CapabilityDebug, CapabilityDebugRun}, pc.Capabilities())
}
