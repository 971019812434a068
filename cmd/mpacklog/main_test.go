package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mpacklog/internal/mpack"
	"mpacklog/internal/testsupport"
)

func writeCLIConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	logDir := filepath.Join(base, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("create log dir: %v", err)
	}
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf("[paths]\nlog_dir = %q\n", logDir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConfigNewAndShow(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "", nil, "config", "new", "--path", target)
	if err != nil {
		t.Fatalf("config new: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected config new output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, "", nil, "config", "new", "--path", target)
	if err == nil {
		t.Fatal("expected error when config file already exists")
	}

	out, _, err = runCLI(t, target, nil, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, target) || !strings.Contains(out, "4747") {
		t.Fatalf("unexpected config show output: %q", out)
	}
}

func TestDumpCommandJSON(t *testing.T) {
	configPath := writeCLIConfig(t)
	logPath := testsupport.NewLogFile(t)
	testsupport.AppendRecords(t, logPath,
		mpack.Record{"foo": int64(1)},
		mpack.Record{"foo": int64(2)},
	)

	out, _, err := runCLI(t, configPath, nil, "dump", logPath)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || lines[0] != `{"foo":1}` || lines[1] != `{"foo":2}` {
		t.Fatalf("unexpected dump output: %q", out)
	}
}

func TestDumpCommandCSV(t *testing.T) {
	configPath := writeCLIConfig(t)
	logPath := testsupport.NewLogFile(t)
	testsupport.AppendRecords(t, logPath,
		mpack.Record{"time": float64(1.0), "foo": int64(3)},
	)

	out, _, err := runCLI(t, configPath, nil, "dump", "--format", "csv", logPath, "foo")
	if err != nil {
		t.Fatalf("dump --format csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || lines[0] != "time,foo" || lines[1] != "1,3" {
		t.Fatalf("unexpected CSV output: %q", out)
	}

	if _, _, err := runCLI(t, configPath, nil, "dump", "--format", "csv", logPath); err == nil {
		t.Fatal("expected error for CSV dump without fields")
	}
}

func TestListCommand(t *testing.T) {
	configPath := writeCLIConfig(t)
	logPath := testsupport.NewLogFile(t)
	testsupport.AppendRecords(t, logPath,
		mpack.Record{"time": float64(1.0), "observation": mpack.Record{"imu": true}},
	)

	out, _, err := runCLI(t, configPath, nil, "list", logPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "- observation/imu\n") || !strings.Contains(out, "- time\n") {
		t.Fatalf("unexpected list output: %q", out)
	}
}

func TestRecordCommandFromStdin(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.mpack")
	stdin := strings.NewReader("{\"foo\": 1}\n{\"foo\": 2, \"time\": 3.5}\n")

	if _, _, err := runCLI(t, "", stdin, "record", logPath); err != nil {
		t.Fatalf("record: %v", err)
	}

	var recs []mpack.Record
	if err := mpack.ReadFile(logPath, func(rec mpack.Record) error {
		recs = append(recs, rec)
		return nil
	}); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if _, ok := recs[0]["time"]; !ok {
		t.Fatal("expected a time stamp on the first record")
	}
	if got := recs[1]["time"]; got != float64(3.5) {
		t.Fatalf("expected existing time stamp preserved, got %v", got)
	}
}

func TestRecordCommandTicks(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ticks.mpack")

	if _, _, err := runCLI(t, "", nil, "record", "--ticks", "3", "--interval", "1ms", logPath); err != nil {
		t.Fatalf("record --ticks: %v", err)
	}

	var count int
	if err := mpack.ReadFile(logPath, func(rec mpack.Record) error {
		if rec["tick"] != int64(count) {
			return fmt.Errorf("unexpected tick %v at index %d", rec["tick"], count)
		}
		count++
		return nil
	}); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 tick records, got %d", count)
	}

	if _, _, err := runCLI(t, "", nil, "record", logPath); err == nil {
		t.Fatal("expected error when log file exists and --append is not set")
	}
}
