package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/yankflash/internal/config"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	logLevel   string
	logFile    string

	logCloser io.Closer
}

func newRootCmd(version string) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "yankflash",
		Short: "Briefly highlight yanked text",
		Long: `yankflash highlights the text of every yank for a moment, then removes
the highlight.

It runs as a Vim job (serve), as a terminal preview (preview), or inside a
Lua-scripted editor (script).`,
		Version:      version,
		SilenceUsage: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logCloser != nil {
				_ = opts.logCloser.Close()
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default: $XDG_CONFIG_HOME/yankflash/config.toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info",
		"log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "",
		"write logs to this file instead of stderr")

	root.AddCommand(
		newServeCmd(opts),
		newPreviewCmd(opts),
		newScriptCmd(opts),
	)
	return root
}

// logger builds the root logger. Logs never go to stdout, which carries the
// Vim channel in serve mode. quiet discards logs unless a file is given.
func (o *globalOptions) logger(quiet bool) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(o.logLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", o.logLevel, err)
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	switch {
	case o.logFile != "":
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("opening log file: %w", err)
		}
		o.logCloser = f
		w = f
	case quiet:
		return zerolog.Nop(), nil
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// resolveConfigPath returns the --config value or the default location when
// a file exists there.
func (o *globalOptions) resolveConfigPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "yankflash", "config.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// loadConfig builds the base configuration store. Invalid values are logged
// and keep their defaults.
func (o *globalOptions) loadConfig(log zerolog.Logger) (*config.Loader, *config.Store, error) {
	loader := config.NewLoader(o.resolveConfigPath())
	cfg, err := loader.Load()
	if err != nil {
		if !errors.Is(err, config.ErrInvalidValue) {
			return nil, nil, err
		}
		log.Warn().Err(err).Str("path", loader.Path()).Msg("ignoring invalid config values")
	}

	log.Debug().
		Str("path", loader.Path()).
		Dur("duration", cfg.Duration).
		Int("background", cfg.Background).
		Int("foreground", cfg.Foreground).
		Str("group", cfg.Group).
		Msg("config loaded")
	return loader, config.NewStore(cfg), nil
}
