package main

import (
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mpacklog/internal/client"
	"mpacklog/internal/config"
	"mpacklog/internal/dump"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var address string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:         "watch",
		Short:       "Poll a running log server and print its latest record",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := client.Dial(address)
			if err != nil {
				return err
			}
			defer cli.Close()

			printer := dump.NewJSONPrinter(cmd.OutOrStdout(), nil)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				rec, err := cli.Get()
				if err != nil {
					return err
				}
				if err := printer.Process(rec); err != nil {
					return err
				}

				select {
				case <-cmd.Context().Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	defaultAddr := net.JoinHostPort("localhost", strconv.Itoa(config.DefaultPort))
	cmd.Flags().StringVarP(&address, "address", "a", defaultAddr, "Log server address (host:port)")
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "Delay between requests")
	return cmd
}
