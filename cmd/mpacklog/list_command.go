package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mpacklog/internal/dump"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [logfile]",
		Short: "List all field paths that appear in a log file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) > 0 {
				arg = args[0]
			}
			path, err := ctx.resolveLogPath(arg)
			if err != nil {
				return err
			}

			printer := dump.NewFieldPrinter(nil)
			if err := dump.Dump(cmd.Context(), path, printer, false); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fields := printer.Fields()
			if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
				headers := []string{"Field", "Count", "Sample"}
				rows := make([][]string, 0, len(fields))
				for _, field := range fields {
					rows = append(rows, []string{
						field.Path,
						strconv.Itoa(field.Count),
						truncateValue(field.Sample, 48),
					})
				}
				aligns := []columnAlignment{alignLeft, alignRight, alignLeft}
				fmt.Fprintln(out, renderTable(headers, rows, aligns))
				return nil
			}

			for _, field := range fields {
				fmt.Fprintf(out, "- %s\n", field.Path)
			}
			return nil
		},
	}
	return cmd
}

func truncateValue(value any, limit int) string {
	s := fmt.Sprint(value)
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
