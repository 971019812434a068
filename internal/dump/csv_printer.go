package dump

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"mpacklog/internal/mpack"
)

// CSVPrinter prints selected fields in CSV, one row per record. The first
// column is always "time".
type CSVPrinter struct {
	w      *csv.Writer
	fields []string
}

// NewCSVPrinter writes CSV to out. At least one field is required; a
// leading "time" field is added when missing. The header row is written
// immediately.
func NewCSVPrinter(out io.Writer, fields []string) (*CSVPrinter, error) {
	if len(fields) < 1 {
		return nil, errors.New("a list of fields is required for the CSV format")
	}
	if fields[0] != "time" {
		fields = append([]string{"time"}, fields...)
	}
	w := csv.NewWriter(out)
	if err := w.Write(fields); err != nil {
		return nil, fmt.Errorf("write CSV header: %w", err)
	}
	return &CSVPrinter{w: w, fields: fields}, nil
}

func (p *CSVPrinter) Process(rec mpack.Record) error {
	row := make([]string, len(p.fields))
	for i, field := range p.fields {
		value, ok := GetField(rec, field)
		if !ok {
			row[i] = "0"
			continue
		}
		row[i] = csvValue(value)
	}
	if err := p.w.Write(row); err != nil {
		return fmt.Errorf("write CSV row: %w", err)
	}
	return nil
}

func (p *CSVPrinter) Finish(string) error {
	p.w.Flush()
	if err := p.w.Error(); err != nil {
		return fmt.Errorf("flush CSV: %w", err)
	}
	return nil
}

func csvValue(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
