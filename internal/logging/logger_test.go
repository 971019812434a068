package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mpacklog/internal/logging"
)

func TestConsoleLoggerWritesComponentPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tailerLog := logging.NewComponentLogger(logger, "tailer")
	tailerLog.Info("poll complete", logging.Int("records", 2))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log output: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "INFO tailer: poll complete") {
		t.Fatalf("unexpected log line: %q", out)
	}
	if !strings.Contains(out, "records=2") {
		t.Fatalf("expected records attr, got %q", out)
	}
}

func TestJSONLoggerLowercasesLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Warn("slow client", logging.String("peer", "127.0.0.1:9"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log output: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"level":"warn"`) {
		t.Fatalf("expected lowercase level, got %q", out)
	}
	if !strings.Contains(out, `"peer":"127.0.0.1:9"`) {
		t.Fatalf("expected peer attr, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	// Must not panic or write anywhere.
	logger.Error("ignored", logging.Error(nil))
}
