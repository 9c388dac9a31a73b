package lua

import (
	"context"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/yankflash/internal/config"
	"github.com/dshills/yankflash/internal/highlight"
	"github.com/dshills/yankflash/internal/plugin"
)

// ModuleName is the global table installed for scripts.
const ModuleName = "yankflash"

// Host runs a Lua editor script with the plugin attached.
type Host struct {
	state  *State
	editor *Editor
	plugin *plugin.Plugin
	log    zerolog.Logger
}

type hostOptions struct {
	store     *config.Store
	log       zerolog.Logger
	sched     highlight.Scheduler
	stateOpts []StateOption
}

// HostOption configures a Host.
type HostOption func(*hostOptions)

// WithStore sets the base configuration store.
func WithStore(s *config.Store) HostOption {
	return func(o *hostOptions) {
		o.store = s
	}
}

// WithLogger sets the host logger.
func WithLogger(l zerolog.Logger) HostOption {
	return func(o *hostOptions) {
		o.log = l
	}
}

// WithScheduler replaces the timer used for deferred clears.
func WithScheduler(s highlight.Scheduler) HostOption {
	return func(o *hostOptions) {
		o.sched = s
	}
}

// WithStateOptions passes options to the underlying Lua state.
func WithStateOptions(opts ...StateOption) HostOption {
	return func(o *hostOptions) {
		o.stateOpts = append(o.stateOpts, opts...)
	}
}

// NewHost creates a sandboxed state with the yankflash module installed.
func NewHost(opts ...HostOption) *Host {
	o := hostOptions{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	state := NewState(o.stateOpts...)
	editor := NewEditor(state)
	ctrl := highlight.NewController(editor,
		highlight.WithScheduler(o.sched),
		highlight.WithLogger(o.log))

	h := &Host{
		state:  state,
		editor: editor,
		plugin: plugin.New(editor,
			plugin.WithStore(o.store),
			plugin.WithLogger(o.log),
			plugin.WithController(ctrl)),
		log: o.log,
	}
	h.install(state.L)
	return h
}

// install registers the yankflash module table.
func (h *Host) install(L *lua.LState) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"yanked": h.luaYanked,
		"config": h.luaConfig,
	})
	L.SetGlobal(ModuleName, mod)
}

// luaYanked implements yankflash.yanked(). It returns true, or nil and an
// error message.
func (h *Host) luaYanked(L *lua.LState) int {
	if err := h.plugin.Yanked(luaContext(L)); err != nil {
		h.log.Error().Err(err).Msg("yank highlight failed")
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

// luaConfig implements yankflash.config().
func (h *Host) luaConfig(L *lua.LState) int {
	cfg, err := h.plugin.Config(luaContext(L))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(configTable(L, cfg))
	return 1
}

func luaContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// RunFile executes a script file.
func (h *Host) RunFile(path string) error {
	return h.state.DoFile(path)
}

// RunString executes script source.
func (h *Host) RunString(code string) error {
	return h.state.DoString(code)
}

// Call calls a global function defined by the script.
func (h *Host) Call(ctx context.Context, fn string, args ...lua.LValue) ([]lua.LValue, error) {
	return h.state.Call(ctx, fn, args...)
}

// Wait blocks until all scheduled clears have run. It must not be called
// from inside a script or while one is running: a yank reported during Wait
// holds the state until Wait returns, and the clears need the state.
func (h *Host) Wait() {
	h.plugin.Wait()
}

// Close waits for pending clears and releases the Lua state.
func (h *Host) Close() error {
	h.plugin.Wait()
	return h.state.Close()
}
