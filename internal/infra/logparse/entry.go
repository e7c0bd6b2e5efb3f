// Package logparse converts raw text log lines into operation records.
package logparse

import (
	"time"

	"profiler/internal/domain/entity"

	"github.com/google/uuid"
)

// Entry is one parsed log line. Envelope fields are always present;
// message fields are filled by whichever grammar matched the message.
type Entry struct {
	Timestamp time.Time // Envelope timestamp.
	Thread    string    // Envelope thread name.
	Level     string    // Envelope log level.
	Logger    string    // Envelope logger name.
	Message   string    // Raw message text after the envelope.

	Event         string  // Event tag, e.g. PRODUCT_OPERATION, USER_AUTHENTICATION.
	Action        string  // Business operation, e.g. "getProductById".
	OperationType string  // READ, WRITE or SEARCH_EXPENSIVE when determinable.
	UserName      string  // Acting user's display name, if present.
	UserEmail     string  // Acting user's email, if present.
	ResourceType  string  // Touched resource type, e.g. PRODUCT.
	ResourceID    *string // Touched resource ID, if present.
	ResourceName  *string // Touched resource name, if present.
	ResourcePrice *float64
	Result        string // SUCCESS, FAILURE or ERROR diagnostic marker.
	ErrorMessage  string // Raw message when the line reports an error.
	DurationMS    *int64 // Reported duration in milliseconds, if present.
}

// Record converts the entry into an operation record. It reports false
// when the entry cannot contribute to profiling: without a user email the
// operation cannot be attributed, and without an operation type it is not
// a catalog operation at all.
func (e *Entry) Record() (entity.OperationRecord, bool) {
	if e.UserEmail == "" || e.OperationType == "" {
		return entity.OperationRecord{}, false
	}

	kind, err := entity.ParseOperationKind(e.OperationType)
	if err != nil {
		return entity.OperationRecord{}, false
	}

	rec := entity.OperationRecord{
		ID:            uuid.New(),
		OperationName: e.Action,
		Kind:          kind,
		Timestamp:     e.Timestamp,
		UserName:      e.UserName,
		UserEmail:     e.UserEmail,
		ProductID:     e.ResourceID,
		ProductName:   e.ResourceName,
		ProductPrice:  e.ResourcePrice,
	}
	if e.ErrorMessage != "" {
		note := e.ErrorMessage
		rec.Note = &note
	}

	return rec, true
}

// Records converts all convertible entries in order.
func Records(entries []Entry) []entity.OperationRecord {
	records := make([]entity.OperationRecord, 0, len(entries))
	for i := range entries {
		if rec, ok := entries[i].Record(); ok {
			records = append(records, rec)
		}
	}

	return records
}
