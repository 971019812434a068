// Package tailer incrementally decodes records appended to a growing mpack
// log file and publishes the newest one.
package tailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/time/rate"

	"mpacklog/internal/latest"
	"mpacklog/internal/logging"
	"mpacklog/internal/mpack"
)

// Options configures a Tailer.
type Options struct {
	// Frequency bounds polls per second. Zero means DefaultFrequency.
	Frequency float64
	// ChunkSize is the number of bytes read per poll. Zero means
	// DefaultChunkSize.
	ChunkSize int
}

const (
	DefaultFrequency = 2000.0
	DefaultChunkSize = 4096
)

// Tailer reads newly appended bytes from one log file. It owns its read
// cursor and decoder state; the cell is its only shared output.
type Tailer struct {
	path      string
	cell      *latest.Cell
	logger    *slog.Logger
	frequency float64
	chunkSize int
}

func New(path string, cell *latest.Cell, logger *slog.Logger, opts Options) *Tailer {
	frequency := opts.Frequency
	if frequency <= 0 {
		frequency = DefaultFrequency
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Tailer{
		path:      path,
		cell:      cell,
		logger:    logging.NewComponentLogger(logger, "tailer"),
		frequency: frequency,
		chunkSize: chunkSize,
	}
}

// Run tails the log file until ctx is canceled. The file is opened with the
// cursor at end-of-file, so records already on disk are skipped: the cell
// only ever reflects records appended from now on. A failure to open the
// file, a read failure, or corrupt stream bytes terminate the loop with an
// error; cancellation returns nil.
func (t *Tailer) Run(ctx context.Context) error {
	file, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek log file: %w", err)
	}
	t.logger.Info("tailing log file", logging.String("path", t.path))

	dec := mpack.NewDecoder()
	limiter := rate.NewLimiter(rate.Limit(t.frequency), 1)
	chunk := make([]byte, t.chunkSize)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		rec, err := t.pollOnce(file, dec, chunk)
		if rec != nil {
			t.cell.Store(rec)
		}
		if err != nil {
			return err
		}

		if err := limiter.Wait(ctx); err != nil {
			return nil
		}
	}
}

// pollOnce reads one chunk of newly available bytes and feeds them to the
// incremental decoder. It returns the last complete record decoded from this
// poll; earlier records in the same batch are discarded because only the
// newest value matters here. A nil record with nil error means no new data.
// Records that are not dictionaries are skipped and logged.
func (t *Tailer) pollOnce(file io.Reader, dec *mpack.Decoder, chunk []byte) (mpack.Record, error) {
	n, readErr := file.Read(chunk)
	if n == 0 {
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("read log file: %w", readErr)
		}
		return nil, nil
	}

	dec.Feed(chunk[:n])
	var last mpack.Record
	for {
		rec, err := dec.Next()
		if errors.Is(err, mpack.ErrIncomplete) {
			break
		}
		if errors.Is(err, mpack.ErrNotMap) {
			t.logger.Warn("skipping malformed record", logging.Error(err))
			continue
		}
		if err != nil {
			return last, err
		}
		last = rec
	}
	return last, nil
}
