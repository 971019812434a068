package mpack_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"mpacklog/internal/mpack"

	"github.com/vmihailenco/msgpack/v5"
)

func TestRoundTrip(t *testing.T) {
	rec := mpack.Record{
		"foo": int64(1),
		"observation": mpack.Record{
			"imu":      []any{float64(0.1), float64(-0.2), float64(9.81)},
			"attached": true,
		},
		"action":  nil,
		"message": "checking",
	}

	data, err := mpack.Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec := mpack.NewDecoder()
	dec.Feed(data)
	got, err := dec.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, rec)
	}
	if dec.Buffered() != 0 {
		t.Fatalf("expected empty buffer, %d bytes left", dec.Buffered())
	}
}

func TestEncodeNilRecord(t *testing.T) {
	data, err := mpack.Encode(nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	empty, err := mpack.Encode(mpack.Record{})
	if err != nil {
		t.Fatalf("Encode empty: %v", err)
	}
	if !reflect.DeepEqual(data, empty) {
		t.Fatalf("nil record should encode like an empty map, got %x vs %x", data, empty)
	}
}

func TestDecoderIncrementalFeed(t *testing.T) {
	first, err := mpack.Encode(mpack.Record{"foo": int64(1)})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := mpack.Encode(mpack.Record{"foo": int64(2), "bar": "baz"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	stream := append(append([]byte{}, first...), second...)

	dec := mpack.NewDecoder()
	var got []mpack.Record
	for _, b := range stream {
		dec.Feed([]byte{b})
		for {
			rec, err := dec.Next()
			if errors.Is(err, mpack.ErrIncomplete) {
				break
			}
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			got = append(got, rec)
		}
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0]["foo"] != int64(1) || got[1]["foo"] != int64(2) {
		t.Fatalf("records decoded out of order: %#v", got)
	}
}

func TestDecoderSkipsNonMapMessages(t *testing.T) {
	notMap, err := msgpack.Marshal([]any{"not", "a", "map"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	valid, err := mpack.Encode(mpack.Record{"foo": int64(3)})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec := mpack.NewDecoder()
	dec.Feed(notMap)
	dec.Feed(valid)

	if _, err := dec.Next(); !errors.Is(err, mpack.ErrNotMap) {
		t.Fatalf("expected ErrNotMap, got %v", err)
	}
	rec, err := dec.Next()
	if err != nil {
		t.Fatalf("Next after skip: %v", err)
	}
	if rec["foo"] != int64(3) {
		t.Fatalf("expected record after skipped message, got %#v", rec)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mpack")
	var stream []byte
	for i := int64(1); i <= 3; i++ {
		data, err := mpack.Encode(mpack.Record{"seq": i})
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		stream = append(stream, data...)
	}
	if err := os.WriteFile(path, stream, 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}

	var seqs []int64
	err := mpack.ReadFile(path, func(rec mpack.Record) error {
		seqs = append(seqs, rec["seq"].(int64))
		return nil
	})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !reflect.DeepEqual(seqs, []int64{1, 2, 3}) {
		t.Fatalf("unexpected sequence: %v", seqs)
	}
}
