package yank

import (
	"context"

	"github.com/google/uuid"
)

// Option configures Compute.
type Option func(*options)

type options struct {
	style string
	newID func() string
}

// WithStyle sets the highlight group stamped on every region.
func WithStyle(style string) Option {
	return func(o *options) {
		if style != "" {
			o.style = style
		}
	}
}

// WithIDGenerator replaces the batch id generator.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// Compute derives the highlight batch for a yank event.
//
// Fragment i is matched against line CursorLine+i. Lines are read in
// fragment order and the first failed read aborts with a *LineError.
func Compute(ctx context.Context, ev Event, lines LineReader, opts ...Option) (Batch, error) {
	o := options{
		style: DefaultStyle,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := ev.Validate(); err != nil {
		return Batch{}, err
	}

	blockwise := ev.IsBlockwise()
	regions := make([]Region, 0, len(ev.Fragments))

	for i, fragment := range ev.Fragments {
		if err := ctx.Err(); err != nil {
			return Batch{}, err
		}

		line := ev.CursorLine + i
		target, err := lines.Line(ctx, line)
		if err != nil {
			return Batch{}, &LineError{Line: line, Err: err}
		}

		regions = append(regions, regionFor(blockwise, i, fragment, target, line, ev.CursorColumn, o))
	}

	return Batch{
		ID:        o.newID(),
		Regions:   regions,
		StartLine: ev.CursorLine,
		EndLine:   ev.CursorLine + len(ev.Fragments),
	}, nil
}

// regionFor classifies one fragment against the text of its target line.
func regionFor(blockwise bool, index int, fragment, target string, line, cursorCol int, o options) Region {
	r := Region{Line: line, Style: o.style}

	switch {
	case blockwise:
		// Every row of a rectangle starts at the original cursor column.
		r.Column = cursorCol
		r.Length = CharLength(fragment)
	case fragment == target:
		r.Column = 1
		r.Length = CharLength(target)
	case index == 0:
		r.Column = cursorCol
		r.Length = CharLength(fragment)
	default:
		r.Column = 1
		r.Length = CharLength(fragment)
	}

	return r
}
