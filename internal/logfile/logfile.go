// Package logfile resolves which on-disk log file a command should read.
package logfile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Resolve returns the concrete log file to open. A path to an existing file
// is returned as-is; a directory resolves to its most recently modified
// *.mpack file.
func Resolve(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat log path: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	matches, err := filepath.Glob(filepath.Join(path, "*.mpack"))
	if err != nil {
		return "", fmt.Errorf("scan log directory: %w", err)
	}

	var newest string
	var newestTime time.Time
	for _, match := range matches {
		stat, err := os.Stat(match)
		if err != nil || stat.IsDir() {
			continue
		}
		if newest == "" || stat.ModTime().After(newestTime) {
			newest = match
			newestTime = stat.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no .mpack log files in %q", path)
	}
	return newest, nil
}
