// Package config resolves the highlight settings used for each yank.
//
// Settings are layered, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, section [highlight]
//  3. YANKFLASH_* environment variables
//  4. Editor globals read on every yank (Resolve)
//
// Layers 1-3 form the base configuration, held in a Store and optionally
// reloaded by a Watcher when the file changes. Layer 4 is applied per yank
// so users can change g:yankedhighlight_* without restarting anything.
//
// Example file:
//
//	[highlight]
//	duration = 1000
//	background = 228
//	foreground = 16
//	group = "YankedHighlight"
package config
