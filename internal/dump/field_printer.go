package dump

import (
	"fmt"
	"io"
	"sort"

	"mpacklog/internal/mpack"
)

// FieldInfo summarizes one field path observed while scanning a log.
type FieldInfo struct {
	Path   string
	Count  int
	Sample any
}

// FieldPrinter parses the whole log and accumulates every field path
// encountered. When out is non-nil, newly seen fields are streamed as they
// appear.
type FieldPrinter struct {
	out   io.Writer
	seen  map[string]*FieldInfo
	order []string
}

func NewFieldPrinter(out io.Writer) *FieldPrinter {
	return &FieldPrinter{out: out, seen: map[string]*FieldInfo{}}
}

func (p *FieldPrinter) Process(rec mpack.Record) error {
	var fresh []string
	for _, field := range ListFields(rec) {
		info, ok := p.seen[field]
		if !ok {
			info = &FieldInfo{Path: field}
			p.seen[field] = info
			p.order = append(p.order, field)
			fresh = append(fresh, field)
		}
		info.Count++
		if value, ok := GetField(rec, field); ok {
			info.Sample = value
		}
	}
	if p.out != nil && len(fresh) > 0 {
		sort.Strings(fresh)
		for _, field := range fresh {
			if _, err := fmt.Fprintf(p.out, "- %s\n", field); err != nil {
				return fmt.Errorf("write field: %w", err)
			}
		}
	}
	return nil
}

func (p *FieldPrinter) Finish(string) error { return nil }

// Fields returns every observed field, sorted by path.
func (p *FieldPrinter) Fields() []FieldInfo {
	out := make([]FieldInfo, 0, len(p.seen))
	for _, path := range p.order {
		out = append(out, *p.seen[path])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
