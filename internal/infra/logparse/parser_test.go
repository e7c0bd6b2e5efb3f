package logparse

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"profiler/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	return NewParser(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParseLine_RejectsNonEnvelopeLines(t *testing.T) {
	p := newTestParser()

	tests := []string{
		"",
		"not a log line",
		"2024-01-01 10:00:00 [main] INFO svc - missing millisecond precision",
		"2024-13-45 10:00:00.000 [main] INFO svc - impossible date",
	}

	for _, line := range tests {
		_, ok := p.ParseLine(line)
		assert.False(t, ok, "line %q should not parse", line)
	}
}

func TestParseLine_EnvelopeFields(t *testing.T) {
	p := newTestParser()

	entry, ok := p.ParseLine("2024-01-01 10:00:00.123 [worker-3] WARN ProductService - something happened")
	require.True(t, ok)

	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 123_000_000, time.UTC), entry.Timestamp)
	assert.Equal(t, "worker-3", entry.Thread)
	assert.Equal(t, "WARN", entry.Level)
	assert.Equal(t, "ProductService", entry.Logger)
	assert.Equal(t, "something happened", entry.Message)
}

func TestParseLine_StructuredOperation(t *testing.T) {
	p := newTestParser()

	line := "2024-01-01 10:00:00.000 [main] INFO svc - Operation: addProduct | User: Bob | Email: bob@x.com | ProductName: Widget | Price: €12.50 | Action: WRITE | Status: SUCCESS"
	entry, ok := p.ParseLine(line)
	require.True(t, ok)

	assert.Equal(t, "addProduct", entry.Action)
	assert.Equal(t, "WRITE", entry.OperationType)
	assert.Equal(t, "Bob", entry.UserName)
	assert.Equal(t, "bob@x.com", entry.UserEmail)
	require.NotNil(t, entry.ResourceName)
	assert.Equal(t, "Widget", *entry.ResourceName)
	require.NotNil(t, entry.ResourcePrice)
	assert.InDelta(t, 12.50, *entry.ResourcePrice, 0.001)
	assert.Equal(t, "SUCCESS", entry.Result)

	rec, ok := entry.Record()
	require.True(t, ok)
	assert.Equal(t, "addProduct", rec.OperationName)
	assert.Equal(t, entity.KindWrite, rec.Kind)
	assert.Equal(t, "bob@x.com", rec.UserEmail)
}

func TestParseLine_ExpensiveProductView(t *testing.T) {
	p := newTestParser()

	line := "2024-01-01 10:05:00.000 [main] INFO ProductService - Expensive product view | ID: 8 | Name: Gold Watch | Price: €450.00 | User: Carol | Email: carol@email.com | Operation: SEARCH_EXPENSIVE | Status: SUCCESS"
	entry, ok := p.ParseLine(line)
	require.True(t, ok)

	assert.Equal(t, "viewExpensiveProduct", entry.Action)
	assert.Equal(t, "SEARCH_EXPENSIVE", entry.OperationType)
	assert.Equal(t, "Carol", entry.UserName)
	assert.Equal(t, "carol@email.com", entry.UserEmail)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "8", *entry.ResourceID)
	require.NotNil(t, entry.ResourceName)
	assert.Equal(t, "Gold Watch", *entry.ResourceName)
	require.NotNil(t, entry.ResourcePrice)
	assert.InDelta(t, 450.0, *entry.ResourcePrice, 0.001)

	rec, ok := entry.Record()
	require.True(t, ok)
	assert.Equal(t, entity.KindSearchExpensive, rec.Kind)
}

func TestParseLine_UnknownUserIsDropped(t *testing.T) {
	p := newTestParser()

	line := "2024-01-01 10:00:00.000 [main] INFO svc - Operation: getAllProducts | User: Unknown | Action: READ | Status: SUCCESS"
	entry, ok := p.ParseLine(line)
	require.True(t, ok)

	assert.Empty(t, entry.UserName)
	assert.Empty(t, entry.UserEmail)

	// Without an email the operation cannot be attributed to a profile.
	_, ok = entry.Record()
	assert.False(t, ok)
}

func TestParseLine_HeuristicProductRead(t *testing.T) {
	p := newTestParser()

	line := "2024-01-01 10:00:00.000 [main] INFO ProductService - User alice@email.com called getProductById for product ID: 42 in 15 ms"
	entry, ok := p.ParseLine(line)
	require.True(t, ok)

	assert.Equal(t, "getProductById", entry.Action)
	assert.Equal(t, "READ", entry.OperationType)
	assert.Equal(t, "alice@email.com", entry.UserEmail)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "42", *entry.ResourceID)
	require.NotNil(t, entry.DurationMS)
	assert.Equal(t, int64(15), *entry.DurationMS)
	assert.Equal(t, "SUCCESS", entry.Result)
}

func TestParseLine_HeuristicErrorCarriesMessage(t *testing.T) {
	p := newTestParser()

	line := "2024-01-01 10:00:00.000 [main] ERROR ProductService - Error: updateProduct failed for user bob@email.com"
	entry, ok := p.ParseLine(line)
	require.True(t, ok)

	assert.Equal(t, "ERROR", entry.Result)
	assert.NotEmpty(t, entry.ErrorMessage)
	assert.Equal(t, "updateProduct", entry.Action)
	assert.Equal(t, "WRITE", entry.OperationType)

	rec, ok := entry.Record()
	require.True(t, ok)
	require.NotNil(t, rec.Note)
	assert.Contains(t, *rec.Note, "updateProduct failed")
}

func TestParseLine_HeuristicAuthenticationEvent(t *testing.T) {
	p := newTestParser()

	line := "2024-01-01 09:59:00.000 [main] INFO AuthService - User alice@email.com authenticated successfully"
	entry, ok := p.ParseLine(line)
	require.True(t, ok)

	assert.Equal(t, "USER_AUTHENTICATION", entry.Event)
	assert.Equal(t, "SUCCESS", entry.Result)
	assert.Equal(t, "alice@email.com", entry.UserEmail)

	// Authentication is not a catalog operation.
	_, ok = entry.Record()
	assert.False(t, ok)
}

func TestParseFile_SkipsGarbageAndBlankLines(t *testing.T) {
	p := newTestParser()

	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	content := "2024-01-01 10:00:00.000 [main] INFO svc - Operation: getAllProducts | User: Alice | Email: alice@email.com | Action: READ | Status: SUCCESS\n" +
		"\n" +
		"garbage line without an envelope\n" +
		"2024-01-01 10:01:00.000 [main] INFO svc - Operation: addProduct | User: Bob | Email: bob@email.com | Action: WRITE | Status: SUCCESS\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, skipped, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 1, skipped)

	records := Records(entries)
	require.Len(t, records, 2)
	assert.Equal(t, entity.KindRead, records[0].Kind)
	assert.Equal(t, entity.KindWrite, records[1].Kind)
}

func TestParseFiles_MissingFileIsNotFatal(t *testing.T) {
	p := newTestParser()

	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	line := "2024-01-01 10:00:00.000 [main] INFO svc - Operation: getAllProducts | User: Alice | Email: alice@email.com | Action: READ | Status: SUCCESS\n"
	require.NoError(t, os.WriteFile(path, []byte(line), 0o644))

	entries, skipped := p.ParseFiles([]string{filepath.Join(dir, "missing.log"), path})
	assert.Len(t, entries, 1)
	assert.Zero(t, skipped)
}
