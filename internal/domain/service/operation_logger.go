package service

import "profiler/internal/domain/entity"

// OperationLogger appends operation records to a durable structured log
// that the offline parser can later rebuild profiles from.
type OperationLogger interface {
	Append(rec entity.OperationRecord) error
}
