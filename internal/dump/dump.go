package dump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"mpacklog/internal/mpack"
)

const readChunkSize = 4096

// Dump reads the log file at path and feeds every record to the printer.
// With follow set, it keeps the file open and waits for new records until
// ctx is canceled, as in `tail -f`.
func Dump(ctx context.Context, path string, printer Printer, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	dec := mpack.NewDecoder()
	chunk := make([]byte, readChunkSize)
	for {
		n, readErr := file.Read(chunk)
		if n > 0 {
			dec.Feed(chunk[:n])
			for {
				rec, err := dec.Next()
				if errors.Is(err, mpack.ErrIncomplete) {
					break
				}
				if errors.Is(err, mpack.ErrNotMap) {
					continue
				}
				if err != nil {
					return err
				}
				if err := printer.Process(rec); err != nil {
					return err
				}
			}
			continue
		}

		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read log file: %w", readErr)
		}
		if !follow {
			break
		}
		select {
		case <-ctx.Done():
			return printer.Finish(path)
		case <-time.After(time.Millisecond):
		}
	}
	return printer.Finish(path)
}
