package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNewJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: FormatJSON, Output: &buf})
	cl := Component(l, "clipboard")
	cl.Debug().Str("op", "read").Msg("bridge call")

	line := buf.String()
	assert.Equal(t, "clipboard", gjson.Get(line, "component").String())
	assert.Equal(t, "read", gjson.Get(line, "op").String())
	assert.Equal(t, "stormbench", gjson.Get(line, "app").String())
	assert.Equal(t, "bridge call", gjson.Get(line, "message").String())
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: FormatJSON, Output: &buf})
	l.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	l.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}
