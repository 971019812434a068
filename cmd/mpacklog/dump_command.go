package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mpacklog/internal/dump"
)

func newDumpCommand(ctx *commandContext) *cobra.Command {
	var format string
	var follow bool

	cmd := &cobra.Command{
		Use:   "dump [logfile] [fields...]",
		Short: "Print the contents of a log file",
		Long: `Print the contents of a log file, one record per line.

Fields are slash-delimited paths into nested records, for example
"observation/imu/orientation". With no fields, whole records are printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			var fields []string
			if len(args) > 0 {
				arg = args[0]
				fields = args[1:]
			}
			path, err := ctx.resolveLogPath(arg)
			if err != nil {
				return err
			}

			var printer dump.Printer
			switch format {
			case "json":
				printer = dump.NewJSONPrinter(cmd.OutOrStdout(), fields)
			case "csv":
				printer, err = dump.NewCSVPrinter(cmd.OutOrStdout(), fields)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want json or csv)", format)
			}

			return dump.Dump(cmd.Context(), path, printer, follow)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format (json or csv)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep the file open and dump new records as they arrive")
	return cmd
}
