package clipboard

import (
	"context"

	"github.com/rs/zerolog"
)

// Bridge exposes a Clipboard to callers that must not touch it directly.
// It holds no state of its own.
type Bridge struct {
	clipboard Clipboard
	logger    zerolog.Logger
}

// NewBridge wraps cb.
func NewBridge(cb Clipboard, logger zerolog.Logger) *Bridge {
	return &Bridge{clipboard: cb, logger: logger}
}

// ReadText returns the clipboard text.
func (b *Bridge) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := b.clipboard.ReadText()
	if err != nil {
		b.logger.Debug().Err(err).Msg("clipboard read failed")
		return "", err
	}
	return text, nil
}

// WriteText replaces the clipboard text. It returns once the native call has
// been issued.
func (b *Bridge) WriteText(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.clipboard.WriteText(value); err != nil {
		b.logger.Debug().Err(err).Msg("clipboard write failed")
		return err
	}
	return nil
}

// Dispose is a no-op; the bridge owns no resources.
func (b *Bridge) Dispose() {}
