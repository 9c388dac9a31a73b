// Package yank turns a yank (copy) event into the buffer regions that should
// flash after the copy.
//
// The event carries no explicit mode. Blockwise yanks are recognised by the
// Ctrl-V marker at the start of the register type; everything else is told
// apart by comparing each copied fragment with the buffer line it came from:
//
//	fragment == line        whole line, highlight from column 1
//	first fragment          partial yank, highlight from the cursor column
//	later fragment          continuation, highlight from column 1
//
// Columns and lengths are in characters, not bytes:
//
//	batch, err := yank.Compute(ctx, ev, lines)
//	if errors.Is(err, yank.ErrNotAYankOperation) {
//	    return nil
//	}
package yank
