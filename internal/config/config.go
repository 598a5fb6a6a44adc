// Package config loads stormbench settings from a TOML file and the
// environment.
//
// Settings are resolved in order: built-in defaults, then the config file,
// then STORMBENCH_* environment variables. A missing config file is not an
// error.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/stormbench/internal/logging"
)

// Clipboard backends.
const (
	BackendSystem = "system"
	BackendMemory = "memory"
)

// Environment variables that override file settings.
const (
	EnvLogLevel    = "STORMBENCH_LOG_LEVEL"
	EnvLogFormat   = "STORMBENCH_LOG_FORMAT"
	EnvClipboard   = "STORMBENCH_CLIPBOARD"
	EnvLaunchFiles = "STORMBENCH_LAUNCH_FILES"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "stormbench.toml"

// Config is the full set of stormbench settings.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Clipboard ClipboardConfig `toml:"clipboard"`
	Launch    LaunchConfig    `toml:"launch"`
	Plugins   PluginsConfig   `toml:"plugins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ClipboardConfig selects and tunes the clipboard backend.
type ClipboardConfig struct {
	// Backend is "system" or "memory".
	Backend string `toml:"backend"`
	// TimeoutMS bounds a single clipboard call made by the client.
	TimeoutMS int `toml:"timeout_ms"`
}

// LaunchConfig lists the launch files that feed debug configurations.
type LaunchConfig struct {
	Files []string `toml:"files"`
	Watch bool     `toml:"watch"`
}

// PluginsConfig lists user scripts.
type PluginsConfig struct {
	TimeoutMS int            `toml:"timeout_ms"`
	Scripts   []ScriptConfig `toml:"script"`
}

// ScriptConfig is one user script and the capabilities granted to it.
type ScriptConfig struct {
	Name         string   `toml:"name"`
	Path         string   `toml:"path"`
	Capabilities []string `toml:"capabilities"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: string(logging.FormatConsole),
		},
		Clipboard: ClipboardConfig{
			Backend:   BackendSystem,
			TimeoutMS: 2000,
		},
		Launch: LaunchConfig{
			Files: []string{"launch.toml"},
		},
		Plugins: PluginsConfig{
			TimeoutMS: 5000,
		},
	}
}

// Load reads the config file at path over the defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg, err := Parse(path, data)
	if err != nil {
		return Config{}, err
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes TOML data over the defaults. Unknown keys are rejected.
func Parse(source string, data []byte) (Config, error) {
	cfg := Default()
	cfg.Launch.Files = nil

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		perr := &ParseError{Path: source, Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return Config{}, perr
	}
	if cfg.Launch.Files == nil {
		cfg.Launch.Files = Default().Launch.Files
	}
	return cfg, nil
}

// resolvePaths makes relative launch and script paths relative to dir.
func (c *Config) resolvePaths(dir string) {
	for i, f := range c.Launch.Files {
		if f != "" && !filepath.IsAbs(f) {
			c.Launch.Files[i] = filepath.Join(dir, f)
		}
	}
	for i, s := range c.Plugins.Scripts {
		if s.Path != "" && !filepath.IsAbs(s.Path) {
			c.Plugins.Scripts[i].Path = filepath.Join(dir, s.Path)
		}
	}
}

// ApplyEnv overrides settings from the environment. Empty values are
// treated as set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvClipboard); ok {
		c.Clipboard.Backend = v
	}
	if v, ok := lookup(EnvLaunchFiles); ok {
		c.Launch.Files = filepath.SplitList(v)
	}
}

// Validate checks every setting and returns all failures joined.
func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "off", "disabled":
	default:
		errs = append(errs, &ValidationError{Path: "log.level", Message: "unknown level", Value: c.Log.Level, Code: ErrCodeInvalidEnum})
	}

	switch logging.Format(c.Log.Format) {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		errs = append(errs, &ValidationError{Path: "log.format", Message: "must be console or json", Value: c.Log.Format, Code: ErrCodeInvalidEnum})
	}

	switch c.Clipboard.Backend {
	case BackendSystem, BackendMemory:
	default:
		errs = append(errs, &ValidationError{Path: "clipboard.backend", Message: "must be system or memory", Value: c.Clipboard.Backend, Code: ErrCodeInvalidEnum})
	}
	if c.Clipboard.TimeoutMS < 0 {
		errs = append(errs, &ValidationError{Path: "clipboard.timeout_ms", Message: "must not be negative", Value: c.Clipboard.TimeoutMS, Code: ErrCodeOutOfRange})
	}
	if c.Plugins.TimeoutMS < 0 {
		errs = append(errs, &ValidationError{Path: "plugins.timeout_ms", Message: "must not be negative", Value: c.Plugins.TimeoutMS, Code: ErrCodeOutOfRange})
	}

	for i, s := range c.Plugins.Scripts {
		if s.Name == "" {
			errs = append(errs, &ValidationError{Path: fmt.Sprintf("plugins.script[%d].name", i), Message: "required", Value: s.Name, Code: ErrCodeRequiredMissing})
		}
		if s.Path == "" {
			errs = append(errs, &ValidationError{Path: fmt.Sprintf("plugins.script[%d].path", i), Message: "required", Value: s.Path, Code: ErrCodeRequiredMissing})
		}
	}

	return errors.Join(errs...)
}

// Logging returns the logger configuration writing to out.
func (c Config) Logging(out io.Writer) logging.Config {
	return logging.Config{
		Level:  c.Log.Level,
		Format: logging.Format(c.Log.Format),
		Output: out,
	}
}

// ClipboardTimeout returns the clipboard call timeout. Zero means none.
func (c Config) ClipboardTimeout() time.Duration {
	return time.Duration(c.Clipboard.TimeoutMS) * time.Millisecond
}

// PluginTimeout returns the per-execution script timeout. Zero means none.
func (c Config) PluginTimeout() time.Duration {
	return time.Duration(c.Plugins.TimeoutMS) * time.Millisecond
}

// Script returns the script with the given name.
func (c Config) Script(name string) (ScriptConfig, bool) {
	for _, s := range c.Plugins.Scripts {
		if s.Name == name {
			return s, true
		}
	}
	return ScriptConfig{}, false
}
