// Package plugin wires the range calculator, configuration and highlight
// controller behind a single argument-less entry point, Plugin.Yanked.
//
// An editor bridge implements Editor, subscribes to the editor's
// TextYankPost notification and calls Yanked for each one. Every call is
// independent: a failed yank is reported to the bridge and the next one is
// handled normally.
package plugin
