package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yankflash.toml")
	require.NoError(t, os.WriteFile(path, []byte("[highlight]\nduration = 100\n"), 0o644))

	loader := NewLoader(path, WithEnv(noEnv))
	cfg, err := loader.Load()
	require.NoError(t, err)
	store := NewStore(cfg)

	reloaded := make(chan Config, 4)
	w, err := NewWatcher(loader, store, OnReload(func(c Config) { reloaded <- c }))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, []byte("[highlight]\nduration = 700\n"), 0o644))

	require.Eventually(t, func() bool {
		return store.Current().Duration == 700*time.Millisecond
	}, 5*time.Second, 10*time.Millisecond)

	select {
	case c := <-reloaded:
		assert.Equal(t, 700*time.Millisecond, c.Duration)
	case <-time.After(5 * time.Second):
		t.Fatal("OnReload was not called")
	}
}

func TestWatcherKeepsConfigOnParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yankflash.toml")
	require.NoError(t, os.WriteFile(path, []byte("[highlight]\nduration = 100\n"), 0o644))

	loader := NewLoader(path, WithEnv(noEnv))
	store := NewStore(Config{Duration: 100 * time.Millisecond, Group: "Keep"})

	w, err := NewWatcher(loader, store)
	require.NoError(t, err)
	defer w.Close()

	w.reload()
	assert.Equal(t, 100*time.Millisecond, store.Current().Duration)

	require.NoError(t, os.WriteFile(path, []byte("[highlight\n"), 0o644))
	w.reload()
	assert.Equal(t, 100*time.Millisecond, store.Current().Duration)
	assert.Equal(t, "YankedHighlight", store.Current().Group)
}

func TestWatcherNeedsPath(t *testing.T) {
	_, err := NewWatcher(NewLoader(""), NewStore(Default()))
	require.Error(t, err)
}

func TestWatcherRunStopsOnClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.toml")

	w, err := NewWatcher(NewLoader(path, WithEnv(noEnv)), NewStore(Default()))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	require.NoError(t, w.Close())
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrWatcherClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
	assert.NoError(t, w.Close())
}
