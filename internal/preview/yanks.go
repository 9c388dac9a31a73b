package preview

import (
	"strconv"

	"github.com/dshills/yankflash/internal/yank"
)

// Register types as reported by Vim.
const (
	regtypeChar  = "v"
	regtypeLine  = "V"
	regtypeBlock = string(rune(yank.BlockwiseMarker))
)

// YankLines yanks count whole lines starting at line, like "yy" or "3yy".
func YankLines(lines []string, line, count int) yank.Event {
	ev := yank.Event{Operator: yank.OperatorYank, ShapeTag: regtypeLine}
	for n := line; n < line+max(count, 1) && n <= len(lines); n++ {
		ev.Fragments = append(ev.Fragments, lines[n-1])
	}
	return ev
}

// YankToEnd yanks from col to the end of line, like "y$".
func YankToEnd(lines []string, line, col int) yank.Event {
	ev := yank.Event{Operator: yank.OperatorYank, ShapeTag: regtypeChar}
	if line < 1 || line > len(lines) {
		return ev
	}
	runes := []rune(lines[line-1])
	start := min(max(col-1, 0), len(runes))
	ev.Fragments = []string{string(runes[start:])}
	return ev
}

// YankBlock yanks a height by width rectangle with its top left corner at
// line and col, like CTRL-V followed by "y". Short lines contribute what
// they have.
func YankBlock(lines []string, line, col, height, width int) yank.Event {
	ev := yank.Event{
		Operator: yank.OperatorYank,
		ShapeTag: regtypeBlock + strconv.Itoa(width),
	}
	for n := line; n < line+height && n <= len(lines); n++ {
		runes := []rune(lines[n-1])
		start := min(max(col-1, 0), len(runes))
		end := min(start+width, len(runes))
		ev.Fragments = append(ev.Fragments, string(runes[start:end]))
	}
	return ev
}

// Delete records a delete of line, which must not highlight anything.
func Delete(lines []string, line int) yank.Event {
	ev := YankLines(lines, line, 1)
	ev.Operator = "d"
	return ev
}
