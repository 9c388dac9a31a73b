package preview

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/yankflash/internal/yank"
)

// Block size yanked by the block key.
const (
	blockHeight = 3
	blockWidth  = 4
)

// Yanker handles a yank notification.
type Yanker interface {
	Yanked(ctx context.Context) error
}

// App runs the preview's key loop.
type App struct {
	screen tcell.Screen
	editor *Editor
	yanker Yanker
	log    zerolog.Logger
}

// NewApp creates a preview app. yanker is normally the plugin built on
// editor.
func NewApp(screen tcell.Screen, editor *Editor, yanker Yanker, log zerolog.Logger) *App {
	return &App{screen: screen, editor: editor, yanker: yanker, log: log}
}

// Run draws the document and handles keys until q, Escape, Ctrl-C or ctx is
// done.
//
//	h j k l / arrows  move
//	y                 yank the line
//	Y                 yank to the end of the line
//	b                 yank a 3x4 block
//	d                 delete the line (not highlighted)
func (a *App) Run(ctx context.Context) error {
	a.editor.Draw()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-done:
		}
	}()

	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.editor.Draw()
			a.screen.Sync()
		case *tcell.EventKey:
			if quit := a.handleKey(ctx, ev); quit {
				return nil
			}
		}
	}
}

// handleKey reports whether the key quits the preview.
func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	line, col := a.editor.Position()
	lines := a.editor.Lines()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		a.editor.MoveTo(line-1, col)
	case tcell.KeyDown:
		a.editor.MoveTo(line+1, col)
	case tcell.KeyLeft:
		a.editor.MoveTo(line, col-1)
	case tcell.KeyRight:
		a.editor.MoveTo(line, col+1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'k':
			a.editor.MoveTo(line-1, col)
		case 'j':
			a.editor.MoveTo(line+1, col)
		case 'h':
			a.editor.MoveTo(line, col-1)
		case 'l':
			a.editor.MoveTo(line, col+1)
		case 'y':
			a.yank(ctx, YankLines(lines, line, 1))
		case 'Y':
			a.yank(ctx, YankToEnd(lines, line, col))
		case 'b':
			a.yank(ctx, YankBlock(lines, line, col, blockHeight, blockWidth))
		case 'd':
			a.yank(ctx, Delete(lines, line))
		}
	}
	a.screen.Show()
	return false
}

func (a *App) yank(ctx context.Context, ev yank.Event) {
	a.editor.Record(ev)
	if err := a.yanker.Yanked(ctx); err != nil {
		a.log.Error().Err(err).Msg("yank highlight failed")
	}
}
