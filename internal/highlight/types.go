package highlight

import (
	"context"
	"time"

	"github.com/dshills/yankflash/internal/yank"
)

// Buffer identifies an editor buffer (Vim's bufnr).
type Buffer int

// Style is a highlight group and its terminal palette colours.
type Style struct {
	Group      string
	Background int
	Foreground int
}

// Decorator draws and removes highlight regions in an editor.
type Decorator interface {
	// Apply highlights all regions in a single request.
	Apply(ctx context.Context, buf Buffer, regions []yank.Region) error

	// Clear removes highlights from lines [startLine, endLine).
	Clear(ctx context.Context, buf Buffer, startLine, endLine int) error
}

// Scheduler runs a function after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(d time.Duration, f func())

// AfterFunc implements Scheduler.
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) {
	fn(d, f)
}

// TimerScheduler schedules with time.AfterFunc.
type TimerScheduler struct{}

// AfterFunc implements Scheduler.
func (TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
