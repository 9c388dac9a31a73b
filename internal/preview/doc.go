// Package preview is a small terminal editor for trying yank highlights
// without a real editor.
//
// A text file is drawn on a tcell screen. Keys move the cursor and yank
// lines, line tails and blocks; each yank goes through the plugin exactly as
// an editor notification would, so the highlight appears with the configured
// colours and disappears after the configured duration.
package preview
