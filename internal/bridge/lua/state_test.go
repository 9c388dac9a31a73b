package lua

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestStateSandbox(t *testing.T) {
	s := NewState()
	defer s.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "io", "os", "require"} {
		assert.Equal(t, lua.LNil, s.L.GetGlobal(name), name)
	}
	for _, name := range []string{"string", "table", "math", "print", "pcall"} {
		assert.NotEqual(t, lua.LNil, s.L.GetGlobal(name), name)
	}

	require.NoError(t, s.DoString(`x = string.upper("ab") .. math.floor(2.5)`))
	assert.Equal(t, lua.LString("AB2"), s.L.GetGlobal("x"))
}

func TestStateDoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.lua")
	require.NoError(t, os.WriteFile(path, []byte(`answer = 6 * 7`), 0o600))

	s := NewState()
	defer s.Close()

	require.NoError(t, s.DoFile(path))
	assert.Equal(t, lua.LNumber(42), s.L.GetGlobal("answer"))
	assert.Error(t, s.DoFile(filepath.Join(t.TempDir(), "missing.lua")))
}

func TestStateCall(t *testing.T) {
	s := NewState()
	defer s.Close()

	require.NoError(t, s.DoString(`function pair(a) return a, a * 2 end`))

	results, err := s.Call(context.Background(), "pair", lua.LNumber(3))
	require.NoError(t, err)
	assert.Equal(t, []lua.LValue{lua.LNumber(3), lua.LNumber(6)}, results)

	_, err = s.Call(context.Background(), "missing")
	assert.ErrorContains(t, err, "not a function")

	require.NoError(t, s.DoString(`function fails() error("nope") end`))
	_, err = s.Call(context.Background(), "fails")
	assert.ErrorContains(t, err, "nope")
}

func TestStateExecutionTimeout(t *testing.T) {
	s := NewState(WithExecutionTimeout(50 * time.Millisecond))
	defer s.Close()

	start := time.Now()
	err := s.DoString(`while true do end`)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	// The state stays usable after an interrupted run.
	require.NoError(t, s.DoString(`y = 1`))
}

func TestStateRecoversPanics(t *testing.T) {
	s := NewState()
	defer s.Close()

	err := s.Invoke(context.Background(), func(*lua.LState) error {
		panic("broken")
	})
	assert.ErrorContains(t, err, "lua panic: broken")
}

func TestStateClosed(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.True(t, s.IsClosed())
	assert.ErrorIs(t, s.DoString(`x = 1`), ErrStateClosed)
	_, err := s.Call(context.Background(), "f")
	assert.ErrorIs(t, err, ErrStateClosed)
}
