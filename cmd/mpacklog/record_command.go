package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mpacklog/internal/mpack"
	"mpacklog/internal/writer"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var appendFlag bool
	var ticks int
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "record <logfile>",
		Short: "Append records to a log file",
		Long: `Append records to a log file.

Records are read as JSON objects, one per line, from standard input. With
--ticks, synthetic tick records are generated instead, which is handy for
trying out serve and watch. A "time" field holding the Unix time in seconds
is added to records that lack one.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := writer.New(args[0], writer.Options{Append: appendFlag})
			if err != nil {
				return err
			}

			if ticks == 0 {
				if f, ok := cmd.InOrStdin().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
					_ = log.Close()
					return fmt.Errorf("standard input is a terminal; pipe JSON lines in or pass --ticks")
				}
				if err := recordFromJSONLines(cmd, log); err != nil {
					_ = log.Close()
					return err
				}
				return log.Close()
			}

			if err := recordTicks(cmd, log, ticks, interval); err != nil {
				_ = log.Close()
				return err
			}
			return log.Close()
		},
	}

	cmd.Flags().BoolVar(&appendFlag, "append", false, "Append to an existing log file")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "Generate this many synthetic tick records instead of reading stdin")
	cmd.Flags().DurationVarP(&interval, "interval", "i", 100*time.Millisecond, "Delay between synthetic ticks")
	return cmd
}

func recordFromJSONLines(cmd *cobra.Command, log *writer.Logger) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec mpack.Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return fmt.Errorf("parse line %d: %w", line, err)
		}
		stampRecord(rec)
		if err := log.Put(rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func recordTicks(cmd *cobra.Command, log *writer.Logger, count int, interval time.Duration) error {
	for i := 0; i < count; i++ {
		rec := mpack.Record{"tick": int64(i)}
		stampRecord(rec)
		if err := log.Put(rec); err != nil {
			return err
		}
		if i == count-1 {
			break
		}
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(interval):
		}
	}
	return nil
}

func stampRecord(rec mpack.Record) {
	if _, ok := rec["time"]; !ok {
		rec["time"] = float64(time.Now().UnixNano()) / 1e9
	}
}
