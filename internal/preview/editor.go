package preview

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dshills/yankflash/internal/config"
	"github.com/dshills/yankflash/internal/highlight"
	"github.com/dshills/yankflash/internal/yank"
)

// BufferID is the only buffer the preview shows.
const BufferID highlight.Buffer = 1

// Editor implements plugin.Editor over an in-memory document drawn on a
// tcell screen. Line n is drawn on screen row n-1.
type Editor struct {
	mu     sync.Mutex
	screen tcell.Screen
	lines  []string
	vars   map[string]any

	event     yank.Event
	line, col int

	styles map[string]tcell.Style
}

// NewEditor creates an editor showing lines on screen. The screen must be
// initialised.
func NewEditor(screen tcell.Screen, lines []string) *Editor {
	return &Editor{
		screen: screen,
		lines:  lines,
		vars:   make(map[string]any),
		line:   1,
		col:    1,
		styles: make(map[string]tcell.Style),
	}
}

// SetVar sets an editor global, as :let g:name = value would.
func (e *Editor) SetVar(name string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[name] = value
}

// Record stores ev as the most recent register change.
func (e *Editor) Record(ev yank.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.event = ev
}

// MoveTo places the cursor, clamped to the document.
func (e *Editor) MoveTo(line, col int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	line = max(1, min(line, len(e.lines)))
	length := 0
	if line <= len(e.lines) {
		length = yank.CharLength(e.lines[line-1])
	}
	e.line = line
	e.col = max(1, min(col, length))
	e.showCursorLocked()
}

// Position returns the cursor line and column.
func (e *Editor) Position() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.line, e.col
}

// Lines returns the document.
func (e *Editor) Lines() []string {
	return e.lines
}

// Draw paints the whole document without highlights.
func (e *Editor) Draw() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.screen.Clear()
	for n := 1; n <= len(e.lines); n++ {
		e.drawLineLocked(n, nil)
	}
	e.showCursorLocked()
	e.screen.Show()
}

// YankEvent returns the recorded event.
func (e *Editor) YankEvent(context.Context) (yank.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.event, nil
}

// Cursor returns the cursor position.
func (e *Editor) Cursor(context.Context) (int, int, error) {
	line, col := e.Position()
	return line, col, nil
}

// Line returns line n, or "" outside the document.
func (e *Editor) Line(ctx context.Context, n int) (string, error) {
	return yank.Lines(e.lines).Line(ctx, n)
}

// Lookup reads the editor global backing key.
func (e *Editor) Lookup(_ context.Context, key string) (any, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vars[config.GlobalName(key)]
	return v, ok, nil
}

// Buffer returns BufferID.
func (e *Editor) Buffer(context.Context) (highlight.Buffer, error) {
	return BufferID, nil
}

// DefineStyle maps the group to palette colours.
func (e *Editor) DefineStyle(_ context.Context, s highlight.Style) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.styles[s.Group] = tcell.StyleDefault.
		Background(tcell.PaletteColor(s.Background)).
		Foreground(tcell.PaletteColor(s.Foreground))
	return nil
}

// Apply paints the regions. Regions on lines outside the document are
// ignored.
func (e *Editor) Apply(_ context.Context, buf highlight.Buffer, regions []yank.Region) error {
	if buf != BufferID {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	byLine := make(map[int][]yank.Region)
	for _, r := range regions {
		if r.Line < 1 || r.Line > len(e.lines) || r.Length <= 0 {
			continue
		}
		byLine[r.Line] = append(byLine[r.Line], r)
	}
	for n, rs := range byLine {
		e.drawLineLocked(n, rs)
	}
	e.showCursorLocked()
	e.screen.Show()
	return nil
}

// Clear repaints lines [start, end) plainly.
func (e *Editor) Clear(_ context.Context, buf highlight.Buffer, start, end int) error {
	if buf != BufferID {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for n := max(start, 1); n < end && n <= len(e.lines); n++ {
		e.drawLineLocked(n, nil)
	}
	e.screen.Show()
	return nil
}

// drawLineLocked draws line n, painting the characters covered by regions
// with their group's style. Each grapheme cluster takes one screen cell (two
// when wide), with combining marks drawn on their base character. Region
// columns count code points, so col advances by the cluster's rune count.
func (e *Editor) drawLineLocked(n int, regions []yank.Region) {
	width, _ := e.screen.Size()
	y := n - 1
	x := 0
	col := 1

	g := uniseg.NewGraphemes(e.lines[n-1])
	for g.Next() {
		runes := g.Runes()
		w := max(runewidth.StringWidth(g.Str()), 1)
		if x+w > width {
			break
		}
		e.screen.SetContent(x, y, runes[0], runes[1:], e.styleAt(regions, col))
		x += w
		col += len(runes)
	}
	for ; x < width; x++ {
		e.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}
}

func (e *Editor) styleAt(regions []yank.Region, col int) tcell.Style {
	for _, r := range regions {
		if col >= r.Column && col < r.End() {
			if s, ok := e.styles[r.Style]; ok {
				return s
			}
			return tcell.StyleDefault.Reverse(true)
		}
	}
	return tcell.StyleDefault
}

// showCursorLocked places the terminal cursor on the cursor character.
func (e *Editor) showCursorLocked() {
	if e.line > len(e.lines) {
		e.screen.HideCursor()
		return
	}
	x, col := 0, 1
	g := uniseg.NewGraphemes(e.lines[e.line-1])
	for g.Next() {
		runes := g.Runes()
		if col+len(runes) > e.col {
			break
		}
		x += max(runewidth.StringWidth(g.Str()), 1)
		col += len(runes)
	}
	e.screen.ShowCursor(x, e.line-1)
}
