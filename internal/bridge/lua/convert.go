package lua

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/yankflash/internal/config"
	"github.com/dshills/yankflash/internal/yank"
)

// toGoValue converts a scalar Lua value. Integral numbers become int64.
// Tables, functions and nil convert to nil.
func toGoValue(lv lua.LValue) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	default:
		return nil
	}
}

// tableString returns t[key] when it is a string.
func tableString(t *lua.LTable, key string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// stringList converts the array part of t to strings. Non-string items
// convert with tostring semantics.
func stringList(t *lua.LTable) []string {
	n := t.Len()
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, lua.LVAsString(t.RawGetInt(i)))
	}
	return out
}

// regionsTable converts regions to an array of {line, column, length, style}.
func regionsTable(L *lua.LState, regions []yank.Region) *lua.LTable {
	t := L.CreateTable(len(regions), 0)
	for _, r := range regions {
		item := L.CreateTable(0, 4)
		item.RawSetString("line", lua.LNumber(r.Line))
		item.RawSetString("column", lua.LNumber(r.Column))
		item.RawSetString("length", lua.LNumber(r.Length))
		item.RawSetString("style", lua.LString(r.Style))
		t.Append(item)
	}
	return t
}

// configTable exposes cfg to scripts. The duration is in milliseconds.
func configTable(L *lua.LState, cfg config.Config) *lua.LTable {
	t := L.CreateTable(0, 4)
	t.RawSetString("duration", lua.LNumber(cfg.Duration.Milliseconds()))
	t.RawSetString("background", lua.LNumber(cfg.Background))
	t.RawSetString("foreground", lua.LNumber(cfg.Foreground))
	t.RawSetString("group", lua.LString(cfg.Group))
	return t
}
