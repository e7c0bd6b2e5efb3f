// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"profiler/internal/domain/entity"
)

// ClassifierUsecase defines the online profiling engine. The catalog
// service calls RecordOperation once per business operation; identity is
// always an explicit parameter, never ambient state.
type ClassifierUsecase interface {
	// RecordOperation appends one operation to the acting user's profile,
	// updates the variant statistics and migrates the profile when a
	// classification threshold is crossed. The whole sequence is atomic
	// per user key and all-or-nothing: invalid input is rejected before
	// any state changes. Returns a copy of the stored profile.
	RecordOperation(ctx context.Context, input *RecordOperationInput) (*entity.Profile, error)

	// GetProfile returns a copy of the current profile for a user key.
	GetProfile(ctx context.Context, userEmail string) (*entity.Profile, error)

	// ListProfiles returns copies of all live profiles.
	ListProfiles(ctx context.Context) ([]*entity.Profile, error)

	// SummaryReport renders an aggregate text report over all live
	// profiles: counts by variant plus a per-user digest.
	SummaryReport(ctx context.Context) (string, error)
}

// --- Input DTOs ---

// RecordOperationInput carries one operation performed by a user.
// Product fields are optional; a missing price is "not applicable", never
// an implicit zero.
type RecordOperationInput struct {
	UserName      string               `json:"userName" validate:"required"`
	UserEmail     string               `json:"userEmail" validate:"required,email"`
	UserAge       int                  `json:"userAge" validate:"gte=0"`
	OperationName string               `json:"operationName" validate:"required"`
	Kind          entity.OperationKind `json:"operationType" validate:"required,oneof=READ WRITE SEARCH_EXPENSIVE"`
	ProductID     *string              `json:"productId,omitempty"`
	ProductName   *string              `json:"productName,omitempty"`
	ProductPrice  *float64             `json:"productPrice,omitempty" validate:"omitempty,gte=0"`
	Note          *string              `json:"note,omitempty"`
}
