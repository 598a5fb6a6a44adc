// Package launch loads debug launch configurations from workspace files.
//
// A launch file holds a list of named configurations describing how to start
// or attach a debug session. Both TOML and YAML files are accepted:
//
//	# .stormbench/launch.toml
//	[[configurations]]
//	name = "Launch server"
//	type = "go"
//	request = "launch"
//	program = "./cmd/server"
package launch

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for launch files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported launch file format")

// Configuration describes how to start or attach a debug session.
type Configuration struct {
	Name        string            `toml:"name" yaml:"name"`
	Type        string            `toml:"type" yaml:"type"`
	Request     string            `toml:"request" yaml:"request"`
	Program     string            `toml:"program" yaml:"program"`
	Args        []string          `toml:"args" yaml:"args"`
	Cwd         string            `toml:"cwd" yaml:"cwd"`
	Env         map[string]string `toml:"env" yaml:"env"`
	StopOnEntry bool              `toml:"stopOnEntry" yaml:"stopOnEntry"`
}

// Set is the group of configurations defined by one launch source.
type Set struct {
	// Source identifies where the configurations came from (usually a file path).
	Source         string          `toml:"-" yaml:"-"`
	Configurations []Configuration `toml:"configurations" yaml:"configurations"`
}

// Names returns the names of the named configurations, in file order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s.Configurations))
	for _, c := range s.Configurations {
		if strings.TrimSpace(c.Name) != "" {
			names = append(names, c.Name)
		}
	}
	return names
}

// Find returns the configuration with the given name.
func (s Set) Find(name string) (Configuration, bool) {
	for _, c := range s.Configurations {
		if c.Name == name {
			return c, true
		}
	}
	return Configuration{}, false
}

// ParseError reports a malformed launch file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse launch file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads the launch file at path. A missing file yields an empty set.
// The set's Source is the absolute path, so reloads of the same file match
// regardless of the working directory the path was given relative to.
func Load(path string) (Set, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Set{}, fmt.Errorf("resolving launch file %s: %w", path, err)
	}
	path = abs

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{Source: path}, nil
		}
		return Set{}, fmt.Errorf("reading launch file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes launch file content, choosing the format by extension.
func Parse(path string, data []byte) (Set, error) {
	set := Set{Source: path}
	if len(bytes.TrimSpace(data)) == 0 {
		return set, nil
	}

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &set)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &set)
	default:
		return Set{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return Set{}, &ParseError{Path: path, Err: err}
	}
	set.Source = path
	return set, nil
}

// LoadAll loads every path and skips missing files.
func LoadAll(paths ...string) ([]Set, error) {
	sets := make([]Set, 0, len(paths))
	for _, p := range paths {
		s, err := Load(p)
		if err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, nil
}
