// Package writer appends codec-encoded records to an mpack log file. Records
// are queued by producers and drained by a single goroutine, and a file lock
// enforces at most one active writer per log file.
package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/gofrs/flock"

	"mpacklog/internal/logging"
	"mpacklog/internal/mpack"
)

// ErrClosed reports a Put after Close.
var ErrClosed = errors.New("logger is closed")

const defaultQueueSize = 1024

// Options configures a Logger.
type Options struct {
	// Append opens an existing file for appending instead of refusing to
	// touch it.
	Append bool
	// QueueSize bounds the record queue. Zero means a sane default.
	QueueSize int
	Logger    *slog.Logger
}

// Logger writes records to a single log file.
type Logger struct {
	path    string
	file    *os.File
	lock    *flock.Flock
	queue   chan mpack.Record
	drained chan struct{}
	logger  *slog.Logger

	mu     sync.RWMutex // guards closed and sends on queue
	closed bool

	errMu    sync.Mutex
	writeErr error
}

// New opens the log file at path and starts the drain goroutine. Unless
// opts.Append is set, an existing file is an error so that old logs are
// never silently appended to.
func New(path string, opts Options) (*Logger, error) {
	if !opts.Append {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("log file %q already exists", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat log file: %w", err)
		}
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire log lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("log file %q already has an active writer", path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open log file: %w", err)
	}

	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	l := &Logger{
		path:    path,
		file:    file,
		lock:    lock,
		queue:   make(chan mpack.Record, queueSize),
		drained: make(chan struct{}),
		logger:  logging.NewComponentLogger(logger, "writer"),
	}
	go l.drain()
	return l, nil
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Put enqueues a record for writing. It blocks while the queue is full.
func (l *Logger) Put(rec mpack.Record) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	l.queue <- rec
	return nil
}

// Close drains any queued records, syncs the file, and releases the lock.
// It returns the first write error encountered by the drain loop, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.drained

	syncErr := l.file.Sync()
	closeErr := l.file.Close()
	if err := l.lock.Unlock(); err != nil {
		l.logger.Warn("failed to release log lock", logging.Error(err))
	}

	l.errMu.Lock()
	defer l.errMu.Unlock()
	if l.writeErr != nil {
		return l.writeErr
	}
	if syncErr != nil {
		return fmt.Errorf("sync log file: %w", syncErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close log file: %w", closeErr)
	}
	return nil
}

func (l *Logger) drain() {
	defer close(l.drained)
	for rec := range l.queue {
		data, err := mpack.Encode(rec)
		if err != nil {
			l.recordError(err)
			continue
		}
		if _, err := l.file.Write(data); err != nil {
			l.recordError(fmt.Errorf("append record: %w", err))
		}
	}
}

func (l *Logger) recordError(err error) {
	l.logger.Warn("dropping record", logging.Error(err))
	l.errMu.Lock()
	defer l.errMu.Unlock()
	if l.writeErr == nil {
		l.writeErr = err
	}
}
