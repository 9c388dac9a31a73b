package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/yankflash/internal/bridge/vimchan"
	"github.com/dshills/yankflash/internal/config"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		channelVar string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve Vim over a JSON job channel on stdin/stdout",
		Long: `Serve Vim over a JSON job channel on stdin and stdout.

Start it from your vimrc:

  let g:yankflash_channel = job_getchannel(job_start(['yankflash', 'serve'],
        \ {'mode': 'json'}))

On start the server installs a TextYankPost autocmd that notifies it of every
yank.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := opts.logger(true)
			if err != nil {
				return err
			}
			loader, store, err := opts.loadConfig(log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watch && loader.Path() != "" {
				if err := startWatcher(ctx, loader, store, log); err != nil {
					log.Warn().Err(err).Msg("config reload disabled")
				}
			}

			srv := vimchan.NewServer(os.Stdin, os.Stdout,
				vimchan.WithStore(store),
				vimchan.WithServerLogger(log),
				vimchan.WithChannelVar(channelVar),
				vimchan.WithInputCloser(os.Stdin))

			err = srv.Run(ctx)
			srv.Wait()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&channelVar, "channel-var", vimchan.DefaultChannelVar,
		"Vim variable holding the job channel")
	cmd.Flags().BoolVar(&watch, "watch", true,
		"reload the config file when it changes")
	return cmd
}

// startWatcher reloads the config file into store until ctx is done.
func startWatcher(ctx context.Context, loader *config.Loader, store *config.Store, log zerolog.Logger) error {
	w, err := config.NewWatcher(loader, store,
		config.WithWatchLogger(log),
		config.OnReload(func(cfg config.Config) {
			log.Info().Dur("duration", cfg.Duration).Msg("config reloaded")
		}))
	if err != nil {
		return err
	}

	go func() {
		defer func() { _ = w.Close() }()
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("config watcher stopped")
		}
	}()
	return nil
}
