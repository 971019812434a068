// Package client implements the polling client side of the snapshot
// protocol: send "get", reassemble one codec-encoded record from however
// many reads it takes.
package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"mpacklog/internal/mpack"
)

// StreamClient is a single connection to a log server.
type StreamClient struct {
	conn net.Conn
	dec  *mpack.Decoder
	buf  []byte
}

// Dial connects to a log server at addr ("host:port").
func Dial(addr string) (*StreamClient, error) {
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect to log server: %w", err)
	}
	return &StreamClient{
		conn: conn,
		dec:  mpack.NewDecoder(),
		buf:  make([]byte, 4096),
	}, nil
}

// Get requests the current snapshot and blocks until one full record has
// been received and decoded. Before any record has been logged, the server
// replies with an empty record.
func (c *StreamClient) Get() (mpack.Record, error) {
	if _, err := c.conn.Write([]byte("get")); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	for {
		rec, err := c.dec.Next()
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, mpack.ErrIncomplete) {
			return nil, err
		}
		n, readErr := c.conn.Read(c.buf)
		if n > 0 {
			c.dec.Feed(c.buf[:n])
			continue
		}
		if readErr != nil {
			return nil, fmt.Errorf("read reply: %w", readErr)
		}
	}
}

// SendStop asks the server to shut down. The server closes the connection
// without a payload.
func (c *StreamClient) SendStop() error {
	if _, err := c.conn.Write([]byte("stop")); err != nil {
		return fmt.Errorf("send stop: %w", err)
	}
	return nil
}

// Close closes the connection.
func (c *StreamClient) Close() error {
	return c.conn.Close()
}
