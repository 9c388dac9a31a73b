package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoScript = `
lines = { "hello world" }
editor = {
  event = function() return { operator = "y", regcontents = { "world" }, regtype = "v" } end,
  cursor = function() return 1, 7 end,
  getline = function(n) return lines[n] end,
  get_var = function(name)
    if name == "yankedhighlight_duration" then return 0 end
  end,
  bufnr = function() return 1 end,
  highlight = function() end,
  decorate = function() end,
  clear = function() end,
}
assert(yankflash.yanked())
assert(yankflash.config().duration == 0)
`

func execute(t *testing.T, args ...string) error {
	t.Helper()
	logFile := filepath.Join(t.TempDir(), "yankflash.log")
	root := newRootCmd("test")
	root.SetArgs(append([]string{"--log-file", logFile, "--log-level", "debug"}, args...))
	root.SetOut(new(discard))
	root.SetErr(new(discard))
	return root.Execute()
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }

func TestScriptCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.lua")
	require.NoError(t, os.WriteFile(path, []byte(demoScript), 0o600))

	assert.NoError(t, execute(t, "script", path))
}

func TestScriptCommandFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.lua")
	require.NoError(t, os.WriteFile(path, []byte(`assert(yankflash.yanked())`), 0o600))

	assert.Error(t, execute(t, "script", path))
	assert.Error(t, execute(t, "script"))
}

func TestScriptCommandUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[highlight]\nduration = 0\nbackground = 12\n"), 0o600))

	script := filepath.Join(dir, "check.lua")
	require.NoError(t, os.WriteFile(script, []byte(`
editor = { get_var = function() return nil end }
local cfg = yankflash.config()
assert(cfg.duration == 0, "duration")
assert(cfg.background == 12, "background")
`), 0o600))

	assert.NoError(t, execute(t, "--config", cfg, "script", script))
}

func TestInvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.lua")
	require.NoError(t, os.WriteFile(path, []byte(demoScript), 0o600))

	assert.Error(t, execute(t, "--log-level", "loud", "script", path))
}

func TestResolveConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	opts := &globalOptions{}
	assert.Empty(t, opts.resolveConfigPath())

	path := filepath.Join(home, "yankflash", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	assert.Equal(t, path, opts.resolveConfigPath())

	opts.configPath = "/elsewhere.toml"
	assert.Equal(t, "/elsewhere.toml", opts.resolveConfigPath())
}

func TestPreviewLines(t *testing.T) {
	lines, err := previewLines(nil)
	require.NoError(t, err)
	assert.Equal(t, "yankflash preview", lines[0])

	path := filepath.Join(t.TempDir(), "text.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o600))
	lines, err = previewLines([]string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)

	_, err = previewLines([]string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}
