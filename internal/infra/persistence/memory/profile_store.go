// Package memory provides the in-memory ProfileStore implementation.
package memory

import (
	"context"
	"sync"

	"profiler/internal/domain/entity"
	"profiler/internal/domain/repository"

	"github.com/pkg/errors"
)

// profileEntry pairs a stored profile with its own mutex so mutations for
// one user never block mutations for another.
type profileEntry struct {
	mu      sync.Mutex
	profile *entity.Profile
}

type profileStore struct {
	mu      sync.RWMutex
	entries map[string]*profileEntry
}

// NewProfileStore creates an empty in-memory profile store.
func NewProfileStore() repository.ProfileStore {
	return &profileStore{
		entries: make(map[string]*profileEntry),
	}
}

// Update runs fn under the per-user lock. The map lock is held only long
// enough to find or create the entry; the read-modify-replace sequence
// itself runs under the entry lock alone.
func (s *profileStore) Update(_ context.Context, userEmail string, fn func(current *entity.Profile) (*entity.Profile, error)) (*entity.Profile, error) {
	if userEmail == "" {
		return nil, errors.New("user email must not be empty")
	}

	s.mu.Lock()
	entry, ok := s.entries[userEmail]
	if !ok {
		entry = &profileEntry{}
		s.entries[userEmail] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	next, err := fn(entry.profile)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, errors.New("profile mutation returned no profile")
	}

	entry.profile = next

	return next.Clone(), nil
}

func (s *profileStore) Get(_ context.Context, userEmail string) (*entity.Profile, error) {
	s.mu.RLock()
	entry, ok := s.entries[userEmail]
	s.mu.RUnlock()

	if !ok {
		return nil, repository.ErrProfileNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.profile == nil {
		return nil, repository.ErrProfileNotFound
	}

	return entry.profile.Clone(), nil
}

func (s *profileStore) List(_ context.Context) ([]*entity.Profile, error) {
	s.mu.RLock()
	entries := make([]*profileEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	profiles := make([]*entity.Profile, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		if entry.profile != nil {
			profiles = append(profiles, entry.profile.Clone())
		}
		entry.mu.Unlock()
	}

	return profiles, nil
}

func (s *profileStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	entries := make([]*profileEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	n := 0
	for _, entry := range entries {
		entry.mu.Lock()
		if entry.profile != nil {
			n++
		}
		entry.mu.Unlock()
	}

	return n, nil
}
