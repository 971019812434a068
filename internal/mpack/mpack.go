package mpack

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Record is one decoded log entry. Values may be nested maps, slices,
// numbers, strings, booleans, or nil. Records are never mutated after they
// have been decoded or handed to an encoder.
type Record = map[string]any

var (
	// ErrIncomplete reports that the buffered bytes do not yet contain a
	// complete message. Feed more bytes and retry.
	ErrIncomplete = errors.New("incomplete message")

	// ErrNotMap reports a complete message whose decoded value is not a
	// string-keyed map. The offending bytes have been consumed, so decoding
	// may continue with the next message.
	ErrNotMap = errors.New("decoded value is not a dictionary")
)

// Encode serializes a record. A nil record encodes as an empty map.
func Encode(rec Record) ([]byte, error) {
	if rec == nil {
		rec = Record{}
	}
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}

// Decoder incrementally splits a byte stream into records. It accumulates
// raw bytes until a complete message's framing is satisfied, then yields the
// decoded record and retains any leftover bytes for the next one. A Decoder
// must only be used from a single goroutine.
type Decoder struct {
	buf []byte
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends raw bytes to the decoder's buffer.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Buffered reports how many bytes are waiting to be decoded.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Next returns the next complete record. It returns ErrIncomplete when the
// buffer holds only a partial message (the buffer is kept intact), ErrNotMap
// when a complete message is not a dictionary, and other errors when the
// stream itself is corrupt.
func (d *Decoder) Next() (Record, error) {
	if len(d.buf) == 0 {
		return nil, ErrIncomplete
	}
	// bytes.Reader implements io.ByteScanner, so the msgpack decoder reads
	// it directly and the reader's position reflects exactly the bytes the
	// message consumed.
	r := bytes.NewReader(d.buf)
	value, err := msgpack.NewDecoder(r).DecodeInterfaceLoose()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrIncomplete
		}
		return nil, fmt.Errorf("decode record: %w", err)
	}
	d.buf = d.buf[len(d.buf)-r.Len():]

	rec, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotMap, value)
	}
	return rec, nil
}

// readChunkSize is the number of bytes read per cycle when scanning a whole
// log file offline.
const readChunkSize = 100_000

// ReadFile decodes every record in the log file at path, in order, invoking
// fn for each. Messages that are not dictionaries are skipped. Reading stops
// at the first error returned by fn.
func ReadFile(path string, fn func(Record) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	dec := NewDecoder()
	chunk := make([]byte, readChunkSize)
	for {
		n, readErr := file.Read(chunk)
		if n > 0 {
			dec.Feed(chunk[:n])
			for {
				rec, err := dec.Next()
				if errors.Is(err, ErrIncomplete) {
					break
				}
				if errors.Is(err, ErrNotMap) {
					continue
				}
				if err != nil {
					return err
				}
				if err := fn(rec); err != nil {
					return err
				}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read log file: %w", readErr)
		}
	}
}
