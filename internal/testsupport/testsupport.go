// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mpacklog/internal/config"
	"mpacklog/internal/mpack"
)

// NewConfig returns a validated config rooted in a temp directory.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Server.Bind = "127.0.0.1"
	cfg.Server.Port = config.DefaultPort
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// NewLogFile creates an empty mpack log file in a temp directory.
func NewLogFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mpack")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("create log file: %v", err)
	}
	return path
}

// AppendRecords encodes and appends records to the log file at path.
func AppendRecords(t *testing.T, path string, recs ...mpack.Record) {
	t.Helper()
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer file.Close()
	for _, rec := range recs {
		data, err := mpack.Encode(rec)
		if err != nil {
			t.Fatalf("encode record: %v", err)
		}
		if _, err := file.Write(data); err != nil {
			t.Fatalf("append record: %v", err)
		}
	}
}

// Eventually polls fn until it returns true or the timeout elapses.
func Eventually(t *testing.T, timeout time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition never met: %s", msg)
}
