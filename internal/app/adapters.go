package app

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Panels tracks which workbench panels are visible.
type Panels struct {
	mu      sync.Mutex
	visible map[string]bool
	logger  zerolog.Logger
}

// NewPanels creates a panel set with every panel hidden.
func NewPanels(logger zerolog.Logger) *Panels {
	return &Panels{
		visible: make(map[string]bool),
		logger:  logger,
	}
}

// TogglePanel flips the panel's visibility and returns the new value.
func (p *Panels) TogglePanel(id string) (bool, error) {
	p.mu.Lock()
	p.visible[id] = !p.visible[id]
	shown := p.visible[id]
	p.mu.Unlock()

	p.logger.Debug().Str("panel", id).Bool("visible", shown).Msg("panel toggled")
	return shown, nil
}

// IsVisible reports whether the panel is shown.
func (p *Panels) IsVisible(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible[id]
}

// EditorOpener opens files by running an editor command such as "vi" or
// "code --wait".
type EditorOpener struct {
	Command string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// Open runs the editor on path and waits for it to exit.
func (o EditorOpener) Open(ctx context.Context, path string) error {
	fields := strings.Fields(o.Command)
	if len(fields) == 0 {
		return ErrNoEditor
	}

	args := append(fields[1:len(fields):len(fields)], path)
	cmd := exec.CommandContext(ctx, fields[0], args...)
	cmd.Stdin = o.Stdin
	cmd.Stdout = o.Stdout
	cmd.Stderr = o.Stderr
	return cmd.Run()
}
