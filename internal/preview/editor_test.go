package preview

import (
	"context"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/yankflash/internal/config"
	"github.com/dshills/yankflash/internal/highlight"
	"github.com/dshills/yankflash/internal/yank"
)

func newScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(width, height)
	t.Cleanup(s.Fini)
	return s
}

func cellAt(s tcell.Screen, x, y int) (rune, tcell.Color) {
	r, _, style, _ := s.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	_, bg, _ := style.Decompose()
	return r, bg
}

var sample = []string{"hello world", "日本語 text", "abc"}

func TestEditorDraw(t *testing.T) {
	s := newScreen(t, 20, 5)
	e := NewEditor(s, sample)
	e.Draw()

	r, bg := cellAt(s, 0, 0)
	assert.Equal(t, 'h', r)
	assert.Equal(t, tcell.ColorDefault, bg)

	r, _ = cellAt(s, 2, 1)
	assert.Equal(t, '本', r)
	r, _ = cellAt(s, 7, 1)
	assert.Equal(t, 't', r)
}

func TestEditorDrawsCombiningMarks(t *testing.T) {
	s := newScreen(t, 20, 5)
	e := NewEditor(s, []string{"e\u0301t\u00e9"})
	e.Draw()

	r, combc, _, _ := s.GetContent(0, 0) //nolint:staticcheck // GetContent is the correct API
	assert.Equal(t, 'e', r)
	assert.Equal(t, []rune{'\u0301'}, combc)

	r, _ = cellAt(s, 1, 0)
	assert.Equal(t, 't', r)
	r, _ = cellAt(s, 2, 0)
	assert.Equal(t, '\u00e9', r)
	r, _ = cellAt(s, 3, 0)
	assert.Equal(t, ' ', r)
}

// Columns count code points: "e\u0301" is columns 1-2 but a single cell.
func TestEditorApplyCombiningMarks(t *testing.T) {
	ctx := context.Background()
	s := newScreen(t, 20, 5)
	e := NewEditor(s, []string{"e\u0301t\u00e9x"})
	e.Draw()
	require.NoError(t, e.DefineStyle(ctx, highlight.Style{Group: "G", Background: 228, Foreground: 16}))

	require.NoError(t, e.Apply(ctx, BufferID, []yank.Region{{Line: 1, Column: 3, Length: 2, Style: "G"}}))

	_, bg := cellAt(s, 0, 0)
	assert.Equal(t, tcell.ColorDefault, bg)
	_, bg = cellAt(s, 1, 0)
	assert.Equal(t, tcell.PaletteColor(228), bg)
	_, bg = cellAt(s, 2, 0)
	assert.Equal(t, tcell.PaletteColor(228), bg)
	_, bg = cellAt(s, 3, 0)
	assert.Equal(t, tcell.ColorDefault, bg)
}

func TestEditorApplyAndClear(t *testing.T) {
	ctx := context.Background()
	s := newScreen(t, 20, 5)
	e := NewEditor(s, sample)
	e.Draw()

	require.NoError(t, e.DefineStyle(ctx, highlight.Style{Group: "YankedHighlight", Background: 228, Foreground: 16}))
	require.NoError(t, e.Apply(ctx, BufferID, []yank.Region{
		{Line: 1, Column: 7, Length: 5, Style: "YankedHighlight"},
		{Line: 2, Column: 2, Length: 2, Style: "YankedHighlight"},
	}))

	for x := 6; x < 11; x++ {
		_, bg := cellAt(s, x, 0)
		assert.Equal(t, tcell.PaletteColor(228), bg, "x=%d", x)
	}
	_, bg := cellAt(s, 5, 0)
	assert.Equal(t, tcell.ColorDefault, bg)

	// Wide runes: columns 2 and 3 start at cells 2 and 4.
	_, bg = cellAt(s, 0, 1)
	assert.Equal(t, tcell.ColorDefault, bg)
	_, bg = cellAt(s, 2, 1)
	assert.Equal(t, tcell.PaletteColor(228), bg)
	_, bg = cellAt(s, 4, 1)
	assert.Equal(t, tcell.PaletteColor(228), bg)
	_, bg = cellAt(s, 7, 1)
	assert.Equal(t, tcell.ColorDefault, bg)

	require.NoError(t, e.Clear(ctx, BufferID, 1, 3))
	_, bg = cellAt(s, 6, 0)
	assert.Equal(t, tcell.ColorDefault, bg)
	_, bg = cellAt(s, 2, 1)
	assert.Equal(t, tcell.ColorDefault, bg)
}

func TestEditorIgnoresOtherBuffersAndLines(t *testing.T) {
	ctx := context.Background()
	s := newScreen(t, 20, 5)
	e := NewEditor(s, sample)
	e.Draw()
	require.NoError(t, e.DefineStyle(ctx, highlight.Style{Group: "G", Background: 1, Foreground: 2}))

	require.NoError(t, e.Apply(ctx, BufferID+1, []yank.Region{{Line: 1, Column: 1, Length: 3, Style: "G"}}))
	_, bg := cellAt(s, 0, 0)
	assert.Equal(t, tcell.ColorDefault, bg)

	assert.NoError(t, e.Apply(ctx, BufferID, []yank.Region{{Line: 9, Column: 1, Length: 3, Style: "G"}}))
	assert.NoError(t, e.Clear(ctx, BufferID, 0, 99))
}

func TestEditorLookup(t *testing.T) {
	ctx := context.Background()
	e := NewEditor(newScreen(t, 10, 3), sample)

	_, ok, err := e.Lookup(ctx, config.KeyDuration)
	require.NoError(t, err)
	assert.False(t, ok)

	e.SetVar("yankedhighlight_duration", int64(300))
	v, ok, err := e.Lookup(ctx, config.KeyDuration)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(300), v)
}

func TestEditorMoveToClamps(t *testing.T) {
	e := NewEditor(newScreen(t, 20, 5), sample)

	e.MoveTo(2, 5)
	line, col := e.Position()
	assert.Equal(t, 2, line)
	assert.Equal(t, 5, col)

	e.MoveTo(10, 50)
	line, col = e.Position()
	assert.Equal(t, 3, line)
	assert.Equal(t, 3, col)

	e.MoveTo(0, 0)
	line, col = e.Position()
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
}
