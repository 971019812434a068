package dump

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"mpacklog/internal/mpack"
)

// JSONPrinter prints records in JSON Lines, the default dump format.
type JSONPrinter struct {
	out    io.Writer
	fields []string
}

// NewJSONPrinter writes JSON Lines to out. If fields are given, only those
// key paths are printed.
func NewJSONPrinter(out io.Writer, fields []string) *JSONPrinter {
	return &JSONPrinter{out: out, fields: fields}
}

func (p *JSONPrinter) Process(rec mpack.Record) error {
	filtered := FilterFields(rec, p.fields)
	data, err := json.Marshal(sanitizeJSON(filtered))
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := fmt.Fprintf(p.out, "%s\n", data); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func (p *JSONPrinter) Finish(string) error { return nil }

// sanitizeJSON replaces NaN and infinities with null, which encoding/json
// cannot represent.
func sanitizeJSON(value any) any {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, child := range v {
			out[key] = sanitizeJSON(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = sanitizeJSON(child)
		}
		return out
	default:
		return value
	}
}
