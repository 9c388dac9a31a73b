package yank

import "unicode/utf8"

// CharLength returns the number of Unicode characters (code points) in s.
// Editor columns count the same unit, so a combining mark is a character
// of its own.
func CharLength(s string) int {
	return utf8.RuneCountInString(s)
}
