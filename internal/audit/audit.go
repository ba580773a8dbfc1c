// Package audit appends dispatched prompts to a best-effort line log.
// Appends use O_APPEND only; concurrent writers rely on atomic append
// semantics, and callers are expected to swallow errors.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Log struct {
	path string
}

// NewLog returns an appender for path, or nil when path is empty (auditing
// disabled). A nil *Log is safe to use.
func NewLog(path string) *Log {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return &Log{path: path}
}

// Append writes one record. Newlines in the text are flattened so every
// record stays a single line.
func (l *Log) Append(roomID, text string) error {
	if l == nil || l.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	flattened := strings.Join(strings.Fields(text), " ")
	line := fmt.Sprintf("%s\t%s\t%s\n", time.Now().UTC().Format(time.RFC3339), roomID, flattened)
	_, err = file.WriteString(line)
	return err
}
