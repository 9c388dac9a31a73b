package vimchan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Handler serves a request sent by Vim. The returned value is encoded as
// the reply.
type Handler func(ctx context.Context, args []gjson.Result) (any, error)

// Channel speaks Vim's JSON channel protocol over a reader/writer pair.
type Channel struct {
	dec    *json.Decoder
	writer io.Writer
	closer io.Closer
	log    zerolog.Logger

	wmu sync.Mutex

	mu       sync.Mutex
	nextID   atomic.Int64
	pending  map[int64]chan gjson.Result
	handlers map[string]Handler

	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithLogger sets the channel logger.
func WithLogger(l zerolog.Logger) ChannelOption {
	return func(c *Channel) {
		c.log = l
	}
}

// WithCloser sets a closer invoked by Close, typically the process stdin.
func WithCloser(cl io.Closer) ChannelOption {
	return func(c *Channel) {
		c.closer = cl
	}
}

// NewChannel creates a channel reading Vim's messages from r and writing
// requests and replies to w.
func NewChannel(r io.Reader, w io.Writer, opts ...ChannelOption) *Channel {
	c := &Channel{
		dec:      json.NewDecoder(r),
		writer:   w,
		log:      zerolog.Nop(),
		pending:  make(map[int64]chan gjson.Result),
		handlers: make(map[string]Handler),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle registers h for requests whose expression is name.
func (c *Channel) Handle(name string, h Handler) {
	c.mu.Lock()
	c.handlers[name] = h
	c.mu.Unlock()
}

// Serve reads messages until the reader is exhausted, ctx is done or the
// channel is closed. It returns nil when Vim closes the channel. The
// channel is closed when Serve returns, failing any request still waiting.
func (c *Channel) Serve(ctx context.Context) error {
	defer func() {
		_ = c.Close()
		c.wg.Wait()
	}()

	msgs := make(chan json.RawMessage)
	readErr := make(chan error, 1)
	go func() {
		for {
			var raw json.RawMessage
			if err := c.dec.Decode(&raw); err != nil {
				readErr <- err
				return
			}
			select {
			case msgs <- raw:
			case <-c.done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) || c.closed.Load() {
				return nil
			}
			return fmt.Errorf("reading channel: %w", err)
		case raw := <-msgs:
			if err := c.dispatch(ctx, raw); err != nil {
				c.log.Warn().Err(err).RawJSON("message", raw).Msg("dropping channel message")
			}
		}
	}
}

// dispatch routes one message to a waiting request or a handler.
func (c *Channel) dispatch(ctx context.Context, raw []byte) error {
	msg := gjson.ParseBytes(raw)
	if !msg.IsArray() {
		return ErrMalformed
	}
	parts := msg.Array()
	if len(parts) < 2 || parts[0].Type != gjson.Number {
		return ErrMalformed
	}

	id := parts[0].Int()
	if id < 0 {
		c.resolve(id, parts[1])
		return nil
	}

	name, args := requestName(parts[1])
	c.mu.Lock()
	h, ok := c.handlers[name]
	c.mu.Unlock()
	if !ok {
		h = func(context.Context, []gjson.Result) (any, error) {
			return nil, fmt.Errorf("unknown request %q", name)
		}
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		result, err := h(ctx, args)
		if id == 0 {
			if err != nil {
				c.log.Warn().Err(err).Str("request", name).Msg("request failed")
			}
			return
		}
		if err != nil {
			result = "error: " + err.Error()
		}
		if werr := c.reply(id, result); werr != nil {
			c.log.Warn().Err(werr).Str("request", name).Msg("failed to reply")
		}
	}()
	return nil
}

// requestName accepts "name" or ["name", args...].
func requestName(expr gjson.Result) (string, []gjson.Result) {
	if expr.IsArray() {
		items := expr.Array()
		if len(items) == 0 {
			return "", nil
		}
		return items[0].String(), items[1:]
	}
	return expr.String(), nil
}

// resolve hands a reply to the request waiting for it.
func (c *Channel) resolve(id int64, result gjson.Result) {
	c.mu.Lock()
	ch, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !ok {
		c.log.Debug().Int64("id", id).Msg("reply for unknown request")
		return
	}
	ch <- result
}

// Expr evaluates a Vim expression and returns its value.
func (c *Channel) Expr(ctx context.Context, expr string) (gjson.Result, error) {
	return c.request(ctx, expr, func(id int64) ([]byte, error) {
		return encode("expr", expr, id)
	})
}

// Call calls a Vim function with args and returns its result.
func (c *Channel) Call(ctx context.Context, fn string, args ...any) (gjson.Result, error) {
	if args == nil {
		args = []any{}
	}
	return c.request(ctx, fn, func(id int64) ([]byte, error) {
		return encode("call", fn, args, id)
	})
}

// Ex runs an Ex command without waiting for a result.
func (c *Channel) Ex(cmd string) error {
	msg, err := encode("ex", cmd)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// Redraw asks Vim to update the screen.
func (c *Channel) Redraw(forced bool) error {
	arg := ""
	if forced {
		arg = "force"
	}
	msg, err := encode("redraw", arg)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// request sends a numbered message and waits for Vim's reply.
func (c *Channel) request(ctx context.Context, what string, build func(id int64) ([]byte, error)) (gjson.Result, error) {
	if c.closed.Load() {
		return gjson.Result{}, ErrClosed
	}

	id := -c.nextID.Add(1)
	ch := make(chan gjson.Result, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	msg, err := build(id)
	if err != nil {
		return gjson.Result{}, err
	}
	if err := c.send(msg); err != nil {
		return gjson.Result{}, fmt.Errorf("send %s: %w", what, err)
	}

	select {
	case <-ctx.Done():
		return gjson.Result{}, ctx.Err()
	case <-c.done:
		return gjson.Result{}, ErrClosed
	case res := <-ch:
		if res.Type == gjson.String && res.Str == "ERROR" {
			return res, &RemoteError{Request: what}
		}
		return res, nil
	}
}

// reply answers a request from Vim.
func (c *Channel) reply(id int64, result any) error {
	msg, err := encode(id, result)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// send writes one message followed by a newline.
func (c *Channel) send(msg []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	if _, err := c.writer.Write(append(msg, '\n')); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Close stops Serve and fails every pending request.
func (c *Channel) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)

	c.mu.Lock()
	c.pending = make(map[int64]chan gjson.Result)
	c.mu.Unlock()

	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// encode builds a JSON array message from its elements.
func encode(elems ...any) ([]byte, error) {
	msg := []byte("[]")
	for _, e := range elems {
		var err error
		msg, err = sjson.SetBytes(msg, "-1", e)
		if err != nil {
			return nil, fmt.Errorf("encode message: %w", err)
		}
	}
	return msg, nil
}
