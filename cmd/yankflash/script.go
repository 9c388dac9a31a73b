package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/yankflash/internal/bridge/lua"
)

func newScriptCmd(opts *globalOptions) *cobra.Command {
	var timeout int

	cmd := &cobra.Command{
		Use:   "script FILE",
		Short: "Run a Lua editor script with the yankflash module loaded",
		Long: `Run a Lua script that defines a global 'editor' table and calls
yankflash.yanked() for each yank. Deferred clears finish before the command
exits.

The script runs in a sandbox without io, os or file loading.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			log, err := opts.logger(false)
			if err != nil {
				return err
			}
			_, store, err := opts.loadConfig(log)
			if err != nil {
				return err
			}

			host := lua.NewHost(
				lua.WithStore(store),
				lua.WithLogger(log),
				lua.WithStateOptions(lua.WithExecutionTimeout(time.Duration(timeout)*time.Millisecond)))
			defer host.Close()

			if err := host.RunFile(args[0]); err != nil {
				return err
			}
			log.Debug().Str("script", args[0]).Msg("script finished, waiting for clears")
			return nil
		},
	}

	cmd.Flags().IntVar(&timeout, "timeout", int(lua.DefaultExecutionTimeout.Milliseconds()),
		"script execution timeout in milliseconds")
	return cmd
}
