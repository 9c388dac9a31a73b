package vimchan

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/dshills/yankflash/internal/config"
	"github.com/dshills/yankflash/internal/highlight"
	"github.com/dshills/yankflash/internal/plugin"
)

// Server runs the plugin for one Vim instance.
type Server struct {
	ch         *Channel
	editor     *Editor
	plugin     *plugin.Plugin
	log        zerolog.Logger
	channelVar string
}

// ServerOption configures a Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	store      *config.Store
	log        zerolog.Logger
	channelVar string
	sched      highlight.Scheduler
	closer     io.Closer
}

// WithStore sets the base configuration store.
func WithStore(s *config.Store) ServerOption {
	return func(o *serverOptions) { o.store = s }
}

// WithServerLogger sets the logger shared by the channel and the plugin.
func WithServerLogger(l zerolog.Logger) ServerOption {
	return func(o *serverOptions) { o.log = l }
}

// WithChannelVar sets the Vim variable holding the job channel.
func WithChannelVar(name string) ServerOption {
	return func(o *serverOptions) { o.channelVar = name }
}

// WithScheduler replaces the timer used for deferred clears.
func WithScheduler(s highlight.Scheduler) ServerOption {
	return func(o *serverOptions) { o.sched = s }
}

// WithInputCloser closes r when the server shuts down.
func WithInputCloser(c io.Closer) ServerOption {
	return func(o *serverOptions) { o.closer = c }
}

// NewServer creates a server reading Vim's messages from r and writing to w.
func NewServer(r io.Reader, w io.Writer, opts ...ServerOption) *Server {
	o := serverOptions{
		log:        zerolog.Nop(),
		channelVar: DefaultChannelVar,
		sched:      highlight.TimerScheduler{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	ch := NewChannel(r, w, WithLogger(o.log), WithCloser(o.closer))
	editor := NewEditor(ch)
	ctrl := highlight.NewController(editor, highlight.WithScheduler(o.sched), highlight.WithLogger(o.log))

	s := &Server{
		ch:         ch,
		editor:     editor,
		plugin:     plugin.New(editor, plugin.WithStore(o.store), plugin.WithLogger(o.log), plugin.WithController(ctrl)),
		log:        o.log,
		channelVar: o.channelVar,
	}
	ch.Handle(RequestYanked, s.yanked)
	return s
}

// Run registers the autocmd and serves requests until Vim closes the
// channel or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.editor.Register(s.channelVar); err != nil {
		return err
	}
	s.log.Info().Str("channel", s.channelVar).Msg("yankflash serving")
	return s.ch.Serve(ctx)
}

// Wait blocks until every scheduled clear has run.
func (s *Server) Wait() {
	s.plugin.Wait()
}

// Close shuts the channel down.
func (s *Server) Close() error {
	return s.ch.Close()
}

func (s *Server) yanked(ctx context.Context, _ []gjson.Result) (any, error) {
	if err := s.plugin.Yanked(ctx); err != nil {
		s.log.Error().Err(err).Msg("yank highlight failed")
		return nil, err
	}
	return "ok", nil
}
