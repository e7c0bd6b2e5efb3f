// Package service defines infrastructure-backed service contracts used by
// the usecase layer.
package service

import (
	"context"

	"profiler/internal/domain/entity"
)

// ProfileExporter serializes profiles to durable records. An export
// failure for one profile must not affect in-memory state or the export
// of other profiles.
type ProfileExporter interface {
	// ExportProfile writes one profile and returns the created file path.
	ExportProfile(ctx context.Context, profile *entity.Profile) (string, error)

	// ExportAll writes every given profile, skipping over per-profile
	// failures, and returns the paths written.
	ExportAll(ctx context.Context, profiles []*entity.Profile) ([]string, error)
}
