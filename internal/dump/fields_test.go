package dump_test

import (
	"reflect"
	"testing"

	"mpacklog/internal/dump"
	"mpacklog/internal/mpack"
)

func sampleRecord() mpack.Record {
	return mpack.Record{
		"time": float64(12.5),
		"observation": mpack.Record{
			"imu": []any{float64(0.1), float64(0.2)},
			"joints": mpack.Record{
				"left": int64(3),
			},
		},
		"ok": true,
	}
}

func TestGetField(t *testing.T) {
	rec := sampleRecord()
	cases := []struct {
		field string
		want  any
		ok    bool
	}{
		{"time", float64(12.5), true},
		{"observation/joints/left", int64(3), true},
		{"observation/imu/1", float64(0.2), true},
		{"observation/imu/9", nil, false},
		{"observation/missing", nil, false},
		{"time/nested", nil, false},
	}
	for _, tc := range cases {
		got, ok := dump.GetField(rec, tc.field)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("GetField(%q) = %v, %v; want %v, %v", tc.field, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSetFieldCreatesNesting(t *testing.T) {
	rec := mpack.Record{}
	dump.SetField(rec, "a/b/c", int64(1))
	got, ok := dump.GetField(rec, "a/b/c")
	if !ok || got != int64(1) {
		t.Fatalf("expected nested value, got %v (%v)", got, ok)
	}
}

func TestListFields(t *testing.T) {
	got := dump.ListFields(sampleRecord())
	want := []string{"observation/imu", "observation/joints/left", "ok", "time"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ListFields = %v, want %v", got, want)
	}
}

func TestFilterFields(t *testing.T) {
	rec := sampleRecord()
	got := dump.FilterFields(rec, []string{"time", "observation/joints/left", "nope"})
	want := mpack.Record{
		"time": float64(12.5),
		"observation": mpack.Record{
			"joints": mpack.Record{"left": int64(3)},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FilterFields = %#v, want %#v", got, want)
	}

	if unfiltered := dump.FilterFields(rec, nil); !reflect.DeepEqual(unfiltered, rec) {
		t.Fatal("empty field list should return the record unchanged")
	}
}
