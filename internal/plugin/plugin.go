package plugin

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dshills/yankflash/internal/config"
	"github.com/dshills/yankflash/internal/highlight"
	"github.com/dshills/yankflash/internal/yank"
)

// Plugin handles yank notifications for one editor.
type Plugin struct {
	editor     Editor
	store      *config.Store
	controller *highlight.Controller
	log        zerolog.Logger
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithStore sets the base configuration store.
func WithStore(s *config.Store) Option {
	return func(p *Plugin) {
		if s != nil {
			p.store = s
		}
	}
}

// WithLogger sets the plugin logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Plugin) {
		p.log = l
	}
}

// WithController replaces the highlight controller.
func WithController(c *highlight.Controller) Option {
	return func(p *Plugin) {
		if c != nil {
			p.controller = c
		}
	}
}

// New creates a plugin for editor.
func New(editor Editor, opts ...Option) *Plugin {
	p := &Plugin{
		editor: editor,
		store:  config.NewStore(config.Default()),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.controller == nil {
		p.controller = highlight.NewController(editor, highlight.WithLogger(p.log))
	}
	return p
}

// Yanked highlights the most recent yank.
//
// Events from other operators and malformed events are skipped and return
// nil. Failed editor reads and rejected decorations are returned.
func (p *Plugin) Yanked(ctx context.Context) error {
	ev, err := p.editor.YankEvent(ctx)
	if err != nil {
		return fmt.Errorf("reading yank event: %w", err)
	}
	if !ev.IsYank() {
		p.log.Debug().Str("operator", ev.Operator).Msg("ignoring non-yank operation")
		return nil
	}

	ev.CursorLine, ev.CursorColumn, err = p.editor.Cursor(ctx)
	if err != nil {
		return fmt.Errorf("reading cursor: %w", err)
	}

	if err := ev.Validate(); err != nil {
		p.log.Warn().Err(err).
			Str("regtype", ev.ShapeTag).
			Int("fragments", len(ev.Fragments)).
			Msg("skipping malformed yank event")
		return nil
	}

	cfg, err := config.Resolve(ctx, p.store.Current(), p.editor)
	if err != nil {
		if !errors.Is(err, config.ErrInvalidValue) {
			return fmt.Errorf("reading config: %w", err)
		}
		p.log.Warn().Err(err).Msg("ignoring invalid highlight setting")
	}

	batch, err := yank.Compute(ctx, ev, p.editor, yank.WithStyle(cfg.Group))
	if err != nil {
		return fmt.Errorf("computing highlight: %w", err)
	}

	buf, err := p.editor.Buffer(ctx)
	if err != nil {
		return fmt.Errorf("reading buffer: %w", err)
	}

	if err := p.editor.DefineStyle(ctx, cfg.Style()); err != nil {
		return fmt.Errorf("defining highlight %s: %w", cfg.Group, err)
	}

	if err := p.controller.ApplyAndSchedule(ctx, buf, batch, cfg.Group, cfg.Duration); err != nil {
		return err
	}

	p.log.Debug().
		Str("batch", batch.ID).
		Int("buffer", int(buf)).
		Int("start", batch.StartLine).
		Int("end", batch.EndLine).
		Bool("blockwise", ev.IsBlockwise()).
		Msg("yank highlighted")
	return nil
}

// Config returns the settings a yank would use right now.
func (p *Plugin) Config(ctx context.Context) (config.Config, error) {
	cfg, err := config.Resolve(ctx, p.store.Current(), p.editor)
	if errors.Is(err, config.ErrInvalidValue) {
		return cfg, nil
	}
	return cfg, err
}

// Wait blocks until all scheduled clears have run.
func (p *Plugin) Wait() {
	p.controller.Wait()
}
