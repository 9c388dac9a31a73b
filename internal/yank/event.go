package yank

import (
	"context"
	"unicode/utf8"
)

// OperatorYank is the operator name reported for copy operations.
const OperatorYank = "y"

// BlockwiseMarker is the code of the first character of a blockwise
// register type (Ctrl-V).
const BlockwiseMarker = 22

// DefaultStyle is the highlight group used when none is configured.
const DefaultStyle = "YankedHighlight"

// Event describes a single yank as reported by the editor.
type Event struct {
	// Operator is the operator that filled the register ("y", "d", "c").
	Operator string

	// Fragments holds one string per buffer line touched, top to bottom.
	Fragments []string

	// ShapeTag is the register type. Only its first character is inspected.
	ShapeTag string

	// CursorLine is the 1-based cursor line at the time of the yank.
	CursorLine int

	// CursorColumn is the 1-based cursor column, in characters.
	CursorColumn int
}

// IsYank reports whether the event came from the copy operator.
func (e Event) IsYank() bool {
	return e.Operator == OperatorYank
}

// IsBlockwise reports whether the event is a rectangular yank.
func (e Event) IsBlockwise() bool {
	r, _ := utf8.DecodeRuneInString(e.ShapeTag)
	return r == BlockwiseMarker
}

// Validate checks the event before any line is read.
func (e Event) Validate() error {
	if !e.IsYank() {
		return ErrNotAYankOperation
	}
	if e.ShapeTag == "" {
		return ErrInvalidShapeTag
	}
	if len(e.Fragments) == 0 {
		return ErrNoFragments
	}
	return nil
}

// Region is one highlighted character range on a single line.
type Region struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Length int    `json:"length"`
	Style  string `json:"style"`
}

// End returns the exclusive end column of the region.
func (r Region) End() int {
	return r.Column + r.Length
}

// Batch is the set of regions produced for one yank.
type Batch struct {
	// ID correlates log lines for the yank.
	ID string

	// Regions holds one region per fragment, in fragment order.
	Regions []Region

	// StartLine is the first affected line (inclusive).
	StartLine int

	// EndLine is one past the last affected line.
	EndLine int
}

// Empty reports whether the batch has no regions.
func (b Batch) Empty() bool {
	return len(b.Regions) == 0
}

// WithStyle returns a copy of the batch with every region set to style.
func (b Batch) WithStyle(style string) Batch {
	regions := make([]Region, len(b.Regions))
	for i, r := range b.Regions {
		r.Style = style
		regions[i] = r
	}
	b.Regions = regions
	return b
}

// LineReader reads the current text of a buffer line.
type LineReader interface {
	// Line returns the text of the 1-based line n without its newline.
	Line(ctx context.Context, n int) (string, error)
}

// LineFunc adapts a function to LineReader.
type LineFunc func(ctx context.Context, n int) (string, error)

// Line implements LineReader.
func (f LineFunc) Line(ctx context.Context, n int) (string, error) {
	return f(ctx, n)
}

// Lines is a LineReader over an in-memory slice. Line 1 is lines[0];
// lines outside the slice read as empty.
type Lines []string

// Line implements LineReader.
func (l Lines) Line(_ context.Context, n int) (string, error) {
	if n < 1 || n > len(l) {
		return "", nil
	}
	return l[n-1], nil
}
