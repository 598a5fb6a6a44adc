package launch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlLaunch = `
[[configurations]]
name = "Launch server"
type = "go"
request = "launch"
program = "./cmd/server"
args = ["--port", "8080"]
stopOnEntry = true

[[configurations]]
type = "go"
request = "attach"
`

const yamlLaunch = `
configurations:
  - name: Debug tests
    type: go
    request: launch
    program: ./...
    env:
      GOFLAGS: -count=1
`

func TestParseTOML(t *testing.T) {
	set, err := Parse("launch.toml", []byte(tomlLaunch))
	require.NoError(t, err)

	require.Len(t, set.Configurations, 2)
	assert.Equal(t, "launch.toml", set.Source)
	assert.Equal(t, []string{"Launch server"}, set.Names())

	c, ok := set.Find("Launch server")
	require.True(t, ok)
	assert.Equal(t, []string{"--port", "8080"}, c.Args)
	assert.True(t, c.StopOnEntry)
}

func TestParseYAML(t *testing.T) {
	set, err := Parse("launch.yaml", []byte(yamlLaunch))
	require.NoError(t, err)

	assert.Equal(t, []string{"Debug tests"}, set.Names())
	c, ok := set.Find("Debug tests")
	require.True(t, ok)
	assert.Equal(t, "-count=1", c.Env["GOFLAGS"])
}

func TestParseEmpty(t *testing.T) {
	set, err := Parse("launch.toml", []byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, set.Names())
}

func TestParseUnsupported(t *testing.T) {
	_, err := Parse("launch.json", []byte(`{}`))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse("launch.toml", []byte("[[configurations]\nname = "))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "launch.toml", perr.Path)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launch.toml")
	set, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, set.Source)
	assert.Empty(t, set.Configurations)
}

// chdir switches the working directory for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadRelativePathUsesAbsoluteSource(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile("launch.toml", []byte(tomlLaunch), 0o644))

	set, err := Load("launch.toml")
	require.NoError(t, err)

	want, err := filepath.Abs("launch.toml")
	require.NoError(t, err)
	assert.Equal(t, want, set.Source)
	assert.Equal(t, []string{"Launch server"}, set.Names())

	missing, err := Load("missing.toml")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(missing.Source))
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.toml")
	b := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(a, []byte(tomlLaunch), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(yamlLaunch), 0o644))

	sets, err := LoadAll(a, b, filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	require.Len(t, sets, 3)
	assert.Len(t, sets[0].Names(), 1)
	assert.Len(t, sets[1].Names(), 1)
	assert.Empty(t, sets[2].Names())
}
