// Package latest provides the shared slot holding the most recently decoded
// log record.
package latest

import (
	"sync/atomic"

	"mpacklog/internal/mpack"
)

// Cell is a single-writer, many-reader slot. The tailer stores whole records
// via a single atomic pointer swap, so readers always observe either the
// empty initial value or some complete, previously stored record.
type Cell struct {
	p atomic.Pointer[mpack.Record]
}

func NewCell() *Cell {
	return &Cell{}
}

// Store publishes a record. Only the tailer calls Store.
func (c *Cell) Store(rec mpack.Record) {
	c.p.Store(&rec)
}

// Load returns the current record, or nil and false if nothing has been
// stored yet.
func (c *Cell) Load() (mpack.Record, bool) {
	rec := c.p.Load()
	if rec == nil {
		return nil, false
	}
	return *rec, true
}

// Snapshot returns the current record, or an empty record before the first
// store.
func (c *Cell) Snapshot() mpack.Record {
	if rec, ok := c.Load(); ok {
		return rec
	}
	return mpack.Record{}
}
