package highlight

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/yankflash/internal/yank"
)

// DefaultClearTimeout bounds a single deferred Clear call.
const DefaultClearTimeout = 5 * time.Second

// Controller sequences apply and the deferred clear for each yank.
type Controller struct {
	dec          Decorator
	sched        Scheduler
	log          zerolog.Logger
	clearTimeout time.Duration

	// waitMu keeps pending.Add from racing a Wait that started at zero.
	waitMu  sync.RWMutex
	pending sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces the timer used for deferred clears.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.sched = s
		}
	}
}

// WithLogger sets the logger for clear failures.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// WithClearTimeout bounds each deferred Clear call.
func WithClearTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.clearTimeout = d
		}
	}
}

// NewController creates a controller that decorates through dec.
func NewController(dec Decorator, opts ...Option) *Controller {
	c := &Controller{
		dec:          dec,
		sched:        TimerScheduler{},
		log:          zerolog.Nop(),
		clearTimeout: DefaultClearTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ApplyAndSchedule highlights batch in buf and schedules its removal after
// duration. A non-positive duration clears with no delay. When Apply fails
// the error is returned as *ApplyError and nothing is scheduled.
func (c *Controller) ApplyAndSchedule(ctx context.Context, buf Buffer, batch yank.Batch, style string, duration time.Duration) error {
	if style != "" {
		batch = batch.WithStyle(style)
	}

	if err := c.dec.Apply(ctx, buf, batch.Regions); err != nil {
		return &ApplyError{Buffer: buf, Batch: batch.ID, Err: err}
	}

	if duration < 0 {
		duration = 0
	}

	c.waitMu.RLock()
	c.pending.Add(1)
	c.waitMu.RUnlock()

	c.sched.AfterFunc(duration, func() {
		defer c.pending.Done()
		c.clear(buf, batch)
	})

	c.log.Debug().
		Str("batch", batch.ID).
		Int("buffer", int(buf)).
		Int("regions", len(batch.Regions)).
		Dur("duration", duration).
		Msg("highlight applied")

	return nil
}

// clear runs on the scheduler's goroutine, detached from the yank's context.
func (c *Controller) clear(buf Buffer, batch yank.Batch) {
	ctx, cancel := context.WithTimeout(context.Background(), c.clearTimeout)
	defer cancel()

	if err := c.dec.Clear(ctx, buf, batch.StartLine, batch.EndLine); err != nil {
		c.log.Warn().
			Err(err).
			Str("batch", batch.ID).
			Int("buffer", int(buf)).
			Int("start", batch.StartLine).
			Int("end", batch.EndLine).
			Msg("failed to clear highlight")
		return
	}

	c.log.Debug().Str("batch", batch.ID).Msg("highlight cleared")
}

// Wait blocks until every scheduled clear has run. Yanks arriving while
// Wait runs block in ApplyAndSchedule until it returns, after which they
// proceed normally.
func (c *Controller) Wait() {
	c.waitMu.Lock()
	defer c.waitMu.Unlock()
	c.pending.Wait()
}
