package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/yankflash/internal/config"
	"github.com/dshills/yankflash/internal/plugin"
	"github.com/dshills/yankflash/internal/preview"
)

const previewText = `yankflash preview

Move with h j k l or the arrow keys.
  y   yank the line
  Y   yank to the end of the line
  b   yank a small block
  d   delete the line (no highlight)
  q   quit

日本語 and other wide characters are highlighted by cell.`

func newPreviewCmd(opts *globalOptions) *cobra.Command {
	var (
		duration   int
		background int
		foreground int
	)

	cmd := &cobra.Command{
		Use:   "preview [FILE]",
		Short: "Try the highlight in a terminal preview",
		Long: `Show FILE (or a short help text) in a minimal terminal editor and
highlight each yank with the configured colours and duration.

--duration, --bg and --fg set the editor globals a Vim user would set with
g:yankedhighlight_duration and friends.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := opts.logger(true)
			if err != nil {
				return err
			}
			_, store, err := opts.loadConfig(log)
			if err != nil {
				return err
			}

			lines, err := previewLines(args)
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("creating terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("initializing terminal: %w", err)
			}
			defer screen.Fini()

			editor := preview.NewEditor(screen, lines)
			flags := cmd.Flags()
			if flags.Changed("duration") {
				editor.SetVar(config.GlobalName(config.KeyDuration), duration)
			}
			if flags.Changed("bg") {
				editor.SetVar(config.GlobalName(config.KeyBackground), background)
			}
			if flags.Changed("fg") {
				editor.SetVar(config.GlobalName(config.KeyForeground), foreground)
			}

			p := plugin.New(editor, plugin.WithStore(store), plugin.WithLogger(log))
			defer p.Wait()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return preview.NewApp(screen, editor, p, log).Run(ctx)
		},
	}

	cmd.Flags().IntVar(&duration, "duration", 0, "highlight duration in milliseconds")
	cmd.Flags().IntVar(&background, "bg", 0, "background palette colour (0-255)")
	cmd.Flags().IntVar(&foreground, "fg", 0, "foreground palette colour (0-255)")
	return cmd
}

// previewLines reads the file named in args, or returns the help text.
func previewLines(args []string) ([]string, error) {
	if len(args) == 0 {
		return strings.Split(previewText, "\n"), nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

