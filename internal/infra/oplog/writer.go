// Package oplog appends catalog operations to a structured text log in
// the same envelope format the log parser consumes.
package oplog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"profiler/internal/domain/entity"

	"github.com/pkg/errors"
)

const (
	timestampLayout = "2006-01-02 15:04:05.000"
	threadName      = "main"
	loggerName      = "ProductService"
)

// Writer appends one envelope-formatted line per operation record. Safe
// for concurrent use.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// NewWriter opens the log file for appending, creating parent
// directories as needed.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create log directory for %s", path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open operation log %s", path)
	}

	return &Writer{file: f, path: path}, nil
}

// Path returns the log file path.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one operation record as a structured log line.
func (w *Writer) Append(rec entity.OperationRecord) error {
	line := FormatLine(rec)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.WriteString(line + "\n"); err != nil {
		return errors.Wrapf(err, "append to operation log %s", w.path)
	}

	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Close(); err != nil {
		return errors.Wrapf(err, "close operation log %s", w.path)
	}

	return nil
}

// FormatLine renders one record as an envelope line with the structured
// "Label: value | ..." message grammar.
func FormatLine(rec entity.OperationRecord) string {
	var msg strings.Builder

	if rec.Kind == entity.KindSearchExpensive {
		msg.WriteString("Expensive product view")
		if rec.ProductID != nil {
			fmt.Fprintf(&msg, " | ID: %s", *rec.ProductID)
		}
		if rec.ProductName != nil {
			fmt.Fprintf(&msg, " | Name: %s", *rec.ProductName)
		}
		if rec.ProductPrice != nil {
			fmt.Fprintf(&msg, " | Price: €%.2f", *rec.ProductPrice)
		}
		fmt.Fprintf(&msg, " | User: %s | Email: %s | Operation: SEARCH_EXPENSIVE", userOrUnknown(rec.UserName), rec.UserEmail)
	} else {
		fmt.Fprintf(&msg, "Operation: %s | User: %s | Email: %s", rec.OperationName, userOrUnknown(rec.UserName), rec.UserEmail)
		if rec.ProductID != nil {
			fmt.Fprintf(&msg, " | ProductID: %s", *rec.ProductID)
		}
		if rec.ProductName != nil {
			fmt.Fprintf(&msg, " | ProductName: %s", *rec.ProductName)
		}
		if rec.ProductPrice != nil {
			fmt.Fprintf(&msg, " | Price: €%.2f", *rec.ProductPrice)
		}
		fmt.Fprintf(&msg, " | Action: %s", rec.Kind)
	}
	msg.WriteString(" | Status: SUCCESS")

	return fmt.Sprintf("%s [%s] INFO %s - %s",
		rec.Timestamp.Format(timestampLayout), threadName, loggerName, msg.String())
}

func userOrUnknown(name string) string {
	if name == "" {
		return "Unknown"
	}

	return name
}
