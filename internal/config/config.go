package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/yankflash/internal/highlight"
	"github.com/dshills/yankflash/internal/yank"
)

// Keys recognised by Resolve.
const (
	KeyDuration   = "duration"
	KeyBackground = "backgroundColor"
	KeyForeground = "foregroundColor"
)

// Defaults.
const (
	DefaultDuration   = 1000 * time.Millisecond
	DefaultBackground = 228
	DefaultForeground = 16
)

// globalNames maps setting keys to editor global variable names.
var globalNames = map[string]string{
	KeyDuration:   "yankedhighlight_duration",
	KeyBackground: "yankedhighlight_bg_color",
	KeyForeground: "yankedhighlight_fg_color",
}

// Keys returns the setting keys in resolution order.
func Keys() []string {
	return []string{KeyDuration, KeyBackground, KeyForeground}
}

// GlobalName returns the editor global variable backing key.
func GlobalName(key string) string {
	if name, ok := globalNames[key]; ok {
		return name
	}
	return "yankedhighlight_" + key
}

// Config is the immutable set of settings for one yank.
type Config struct {
	// Duration is how long the highlight stays. Never negative.
	Duration time.Duration

	// Background and Foreground are 256-colour palette indices.
	Background int
	Foreground int

	// Group is the editor highlight group name.
	Group string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Duration:   DefaultDuration,
		Background: DefaultBackground,
		Foreground: DefaultForeground,
		Group:      yank.DefaultStyle,
	}
}

// Style returns the highlight style described by the configuration.
func (c Config) Style() highlight.Style {
	return highlight.Style{
		Group:      c.Group,
		Background: c.Background,
		Foreground: c.Foreground,
	}
}

// Lookup reads user overrides from the editor.
type Lookup interface {
	// Lookup returns the value for key and whether it is set.
	Lookup(ctx context.Context, key string) (any, bool, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, key string) (any, bool, error)

// Lookup implements Lookup.
func (f LookupFunc) Lookup(ctx context.Context, key string) (any, bool, error) {
	return f(ctx, key)
}

// Resolve overlays the editor's overrides onto base.
//
// Lookup failures are returned immediately. Values of the wrong type keep
// the base setting and are reported as *ValueError joined into the
// returned error, alongside a usable Config.
func Resolve(ctx context.Context, base Config, src Lookup) (Config, error) {
	cfg := base
	var invalid []error

	for _, key := range Keys() {
		v, ok, err := src.Lookup(ctx, key)
		if err != nil {
			return base, fmt.Errorf("reading %s: %w", key, err)
		}
		if !ok || v == nil {
			continue
		}

		n, err := toInt(key, v)
		if err != nil {
			invalid = append(invalid, err)
			continue
		}

		switch key {
		case KeyDuration:
			cfg.Duration = clampDuration(n)
		case KeyBackground:
			cfg.Background = n
		case KeyForeground:
			cfg.Foreground = n
		}
	}

	return cfg, errors.Join(invalid...)
}

// clampDuration converts milliseconds to a duration, clamping negatives to 0.
func clampDuration(ms int) time.Duration {
	if ms < 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// toInt coerces the numeric representations produced by TOML, JSON and Lua.
func toInt(key string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n), nil
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, nil
		}
	}
	return 0, &ValueError{Key: key, Value: v, Message: "expected an integer"}
}
