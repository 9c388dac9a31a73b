package plugin

import (
	"context"

	"github.com/dshills/yankflash/internal/config"
	"github.com/dshills/yankflash/internal/highlight"
	"github.com/dshills/yankflash/internal/yank"
)

// Editor is everything the plugin needs from the host editor.
type Editor interface {
	yank.LineReader
	config.Lookup
	highlight.Decorator

	// YankEvent returns the operator, register contents and register type
	// of the most recent yank. Cursor fields are filled from Cursor.
	YankEvent(ctx context.Context) (yank.Event, error)

	// Cursor returns the 1-based cursor line and character column.
	Cursor(ctx context.Context) (line, col int, err error)

	// Buffer returns the buffer the yank happened in.
	Buffer(ctx context.Context) (highlight.Buffer, error)

	// DefineStyle creates or updates the highlight group.
	DefineStyle(ctx context.Context, style highlight.Style) error
}
