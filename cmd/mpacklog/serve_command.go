package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mpacklog/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port int
	var bind string
	var frequency float64

	cmd := &cobra.Command{
		Use:   "serve [logfile]",
		Short: "Serve the newest record of a growing log over TCP",
		Long: `Serve the newest record of a growing log over TCP.

The log file argument may be a file or a directory; for a directory the
most recent .mpack file is served. Clients send "get" to receive the
latest record and "stop" to shut the server down.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) > 0 {
				arg = args[0]
			}
			path, err := ctx.resolveLogPath(arg)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Server.Port
			}
			if !cmd.Flags().Changed("bind") {
				bind = cfg.Server.Bind
			}
			if !cmd.Flags().Changed("frequency") {
				frequency = cfg.Server.PollFrequency
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			svc := server.New(path, logger, server.Options{
				Bind:      bind,
				Port:      port,
				Frequency: frequency,
				ChunkSize: cfg.Server.ReadChunkBytes,
			})
			return svc.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on")
	cmd.Flags().StringVar(&bind, "bind", "", "Interface to listen on (default all)")
	cmd.Flags().Float64Var(&frequency, "frequency", 0, "Maximum polls and replies per second")
	return cmd
}
