package dump

import "mpacklog/internal/mpack"

// Printer processes decoded records one by one and wraps up once the whole
// log has been read. Each output format implements this pair of methods; no
// deeper hierarchy is needed.
type Printer interface {
	Process(rec mpack.Record) error
	Finish(logfile string) error
}
