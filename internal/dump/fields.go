package dump

import (
	"sort"
	"strconv"
	"strings"

	"mpacklog/internal/mpack"
)

// GetField returns the value at a slash-separated key path, descending
// through nested maps and, for numeric path segments, through lists.
func GetField(collection any, field string) (any, bool) {
	current := collection
	for _, key := range strings.Split(field, "/") {
		switch node := current.(type) {
		case map[string]any:
			child, ok := node[key]
			if !ok {
				return nil, false
			}
			current = child
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// SetField stores a value at a slash-separated key path, creating
// intermediate maps as needed.
func SetField(rec mpack.Record, field string, value any) {
	keys := strings.Split(field, "/")
	current := rec
	for _, key := range keys[:len(keys)-1] {
		child, ok := current[key].(map[string]any)
		if !ok {
			child = mpack.Record{}
			current[key] = child
		}
		current = child
	}
	current[keys[len(keys)-1]] = value
}

// ListFields returns the sorted flattened key paths of every leaf value in
// the record. Lists count as leaves.
func ListFields(rec mpack.Record) []string {
	var fields []string
	var walk func(node mpack.Record, prefix string)
	walk = func(node mpack.Record, prefix string) {
		for key, value := range node {
			path := key
			if prefix != "" {
				path = prefix + "/" + key
			}
			if child, ok := value.(map[string]any); ok {
				walk(child, path)
			} else {
				fields = append(fields, path)
			}
		}
	}
	walk(rec, "")
	sort.Strings(fields)
	return fields
}

// FilterFields returns a record containing only the requested fields,
// rebuilt at their original nesting. Missing fields are silently dropped.
// An empty field list returns the record unchanged.
func FilterFields(rec mpack.Record, fields []string) mpack.Record {
	if len(fields) == 0 {
		return rec
	}
	out := mpack.Record{}
	for _, field := range fields {
		if value, ok := GetField(rec, field); ok {
			SetField(out, field, value)
		}
	}
	return out
}
