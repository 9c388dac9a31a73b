package lua

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/yankflash/internal/config"
	"github.com/dshills/yankflash/internal/highlight"
	"github.com/dshills/yankflash/internal/yank"
)

// Editor implements plugin.Editor by calling the script's editor table.
//
// Every method except Clear runs on the Lua state directly and must only be
// called while the state is already held, that is from inside a yankflash
// module function. Clear runs from timer goroutines and takes the state
// through State.Invoke.
type Editor struct {
	state *State
}

// NewEditor creates an editor backed by the script loaded into state.
func NewEditor(state *State) *Editor {
	return &Editor{state: state}
}

// call invokes editor.<name> on L and returns its results.
func (e *Editor) call(L *lua.LState, name string, args ...lua.LValue) ([]lua.LValue, error) {
	tbl, ok := L.GetGlobal("editor").(*lua.LTable)
	if !ok {
		return nil, ErrNoEditor
	}
	fn := L.GetField(tbl, name)
	if fn.Type() != lua.LTFunction {
		return nil, &CallbackError{Name: name, Err: fmt.Errorf("not a function (got %s)", fn.Type())}
	}
	results, err := callValue(L, fn, args...)
	if err != nil {
		return nil, &CallbackError{Name: name, Err: err}
	}
	if len(results) >= 2 && results[0] == lua.LNil && results[1] != lua.LNil {
		return nil, &CallbackError{Name: name, Err: fmt.Errorf("%s", lua.LVAsString(results[1]))}
	}
	return results, nil
}

// first returns the first result or nil.
func first(results []lua.LValue) lua.LValue {
	if len(results) == 0 {
		return lua.LNil
	}
	return results[0]
}

// YankEvent calls editor.event().
func (e *Editor) YankEvent(context.Context) (yank.Event, error) {
	results, err := e.call(e.state.L, "event")
	if err != nil {
		return yank.Event{}, err
	}
	tbl, ok := first(results).(*lua.LTable)
	if !ok {
		return yank.Event{}, &CallbackError{Name: "event", Err: fmt.Errorf("returned %s, not a table", first(results).Type())}
	}

	ev := yank.Event{
		Operator: tableString(tbl, "operator"),
		ShapeTag: tableString(tbl, "regtype"),
	}
	if contents, ok := tbl.RawGetString("regcontents").(*lua.LTable); ok {
		ev.Fragments = stringList(contents)
	}
	return ev, nil
}

// Cursor calls editor.cursor(), which returns line and column.
func (e *Editor) Cursor(context.Context) (int, int, error) {
	results, err := e.call(e.state.L, "cursor")
	if err != nil {
		return 0, 0, err
	}
	if len(results) < 2 {
		return 0, 0, &CallbackError{Name: "cursor", Err: fmt.Errorf("returned %d values, want 2", len(results))}
	}
	return int(lua.LVAsNumber(results[0])), int(lua.LVAsNumber(results[1])), nil
}

// Line calls editor.getline(n). nil reads as an empty line.
func (e *Editor) Line(_ context.Context, n int) (string, error) {
	results, err := e.call(e.state.L, "getline", lua.LNumber(n))
	if err != nil {
		return "", err
	}
	v := first(results)
	if v == lua.LNil {
		return "", nil
	}
	return lua.LVAsString(v), nil
}

// Lookup calls editor.get_var with the global name for key. nil means unset.
func (e *Editor) Lookup(_ context.Context, key string) (any, bool, error) {
	results, err := e.call(e.state.L, "get_var", lua.LString(config.GlobalName(key)))
	if err != nil {
		return nil, false, err
	}
	v := toGoValue(first(results))
	if v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

// Buffer calls editor.bufnr().
func (e *Editor) Buffer(context.Context) (highlight.Buffer, error) {
	results, err := e.call(e.state.L, "bufnr")
	if err != nil {
		return 0, err
	}
	return highlight.Buffer(lua.LVAsNumber(first(results))), nil
}

// DefineStyle calls editor.highlight(group, bg, fg).
func (e *Editor) DefineStyle(_ context.Context, s highlight.Style) error {
	_, err := e.call(e.state.L, "highlight",
		lua.LString(s.Group), lua.LNumber(s.Background), lua.LNumber(s.Foreground))
	return err
}

// Apply calls editor.decorate(bufnr, regions) once for the whole batch.
func (e *Editor) Apply(_ context.Context, buf highlight.Buffer, regions []yank.Region) error {
	L := e.state.L
	_, err := e.call(L, "decorate", lua.LNumber(buf), regionsTable(L, regions))
	return err
}

// Clear calls editor.clear(bufnr, start, end) with the exclusive end line.
func (e *Editor) Clear(ctx context.Context, buf highlight.Buffer, start, end int) error {
	return e.state.Invoke(ctx, func(L *lua.LState) error {
		_, err := e.call(L, "clear", lua.LNumber(buf), lua.LNumber(start), lua.LNumber(end))
		return err
	})
}
