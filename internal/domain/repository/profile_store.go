// Package repository defines the persistence contracts of the domain layer.
package repository

import (
	"context"
	"errors"

	"profiler/internal/domain/entity"
)

// ErrProfileNotFound is returned when no profile exists for a user key.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore owns the current profile per user key (email). It is the
// only writer-facing surface of the live profile state.
//
// Update runs fn under per-key mutual exclusion: the whole
// read-modify-classify-replace sequence of the classifier executes as one
// atomic unit for that user, while operations for different users never
// block each other. fn receives the current profile (nil when the user is
// new) and returns the profile to store; returning an error leaves the
// stored profile untouched.
type ProfileStore interface {
	Update(ctx context.Context, userEmail string, fn func(current *entity.Profile) (*entity.Profile, error)) (*entity.Profile, error)
	Get(ctx context.Context, userEmail string) (*entity.Profile, error)
	List(ctx context.Context) ([]*entity.Profile, error)
	Len(ctx context.Context) (int, error)
}
