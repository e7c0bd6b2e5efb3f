package usecase

import (
	"context"

	"profiler/internal/domain/entity"
)

// ExtractorUsecase rebuilds behavioral profiles from historical operation
// records, independent of any live classifier state. Unlike the online
// path there is no minimum-sample gate: every user is classified from
// whatever records the logs contain.
type ExtractorUsecase interface {
	// ExtractProfiles groups the records by user email and computes one
	// final profile per user in a single pass.
	ExtractProfiles(ctx context.Context, records []entity.OperationRecord) (map[string]*entity.Profile, error)

	// Report renders the extraction summary: totals by variant with
	// percentages and a one-line digest per user.
	Report(profiles map[string]*entity.Profile) string
}
