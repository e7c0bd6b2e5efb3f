package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"profiler/internal/domain/entity"
	"profiler/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProfile(email string) *entity.Profile {
	return entity.NewProfile("Alice", email, 28, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
}

func TestUpdate_CreatesProfileOnFirstCall(t *testing.T) {
	store := NewProfileStore()
	ctx := context.Background()

	got, err := store.Update(ctx, "alice@email.com", func(current *entity.Profile) (*entity.Profile, error) {
		require.Nil(t, current)

		return seedProfile("alice@email.com"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@email.com", got.UserEmail)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpdate_ErrorLeavesStateUntouched(t *testing.T) {
	store := NewProfileStore()
	ctx := context.Background()

	_, err := store.Update(ctx, "alice@email.com", func(current *entity.Profile) (*entity.Profile, error) {
		return seedProfile("alice@email.com"), nil
	})
	require.NoError(t, err)

	_, err = store.Update(ctx, "alice@email.com", func(current *entity.Profile) (*entity.Profile, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)

	got, err := store.Get(ctx, "alice@email.com")
	require.NoError(t, err)
	assert.Zero(t, got.TotalOperations)
}

func TestUpdate_RejectsNilResultAndEmptyKey(t *testing.T) {
	store := NewProfileStore()
	ctx := context.Background()

	_, err := store.Update(ctx, "alice@email.com", func(current *entity.Profile) (*entity.Profile, error) {
		return nil, nil
	})
	require.Error(t, err)

	_, err = store.Update(ctx, "", func(current *entity.Profile) (*entity.Profile, error) {
		return seedProfile(""), nil
	})
	require.Error(t, err)
}

func TestGet_UnknownUserReturnsNotFound(t *testing.T) {
	store := NewProfileStore()

	_, err := store.Get(context.Background(), "nobody@email.com")
	assert.ErrorIs(t, err, repository.ErrProfileNotFound)
}

func TestUpdate_ReturnsACopy(t *testing.T) {
	store := NewProfileStore()
	ctx := context.Background()

	got, err := store.Update(ctx, "alice@email.com", func(current *entity.Profile) (*entity.Profile, error) {
		return seedProfile("alice@email.com"), nil
	})
	require.NoError(t, err)

	got.UserName = "Mallory"

	stored, err := store.Get(ctx, "alice@email.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.UserName)
}

func TestUpdate_ConcurrentSameUserNeverLosesAnAppend(t *testing.T) {
	store := NewProfileStore()
	ctx := context.Background()
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "alice@email.com", func(current *entity.Profile) (*entity.Profile, error) {
				if current == nil {
					current = seedProfile("alice@email.com")
				}
				current.Append(entity.OperationRecord{
					OperationName: "getAllProducts",
					Kind:          entity.KindRead,
					Timestamp:     time.Now(),
					UserName:      "Alice",
					UserEmail:     "alice@email.com",
				})

				return current, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "alice@email.com")
	require.NoError(t, err)
	assert.Equal(t, workers, got.TotalOperations)
	assert.Len(t, got.History, workers)
}

func TestList_ReturnsAllProfiles(t *testing.T) {
	store := NewProfileStore()
	ctx := context.Background()

	for _, email := range []string{"alice@email.com", "bob@email.com", "carol@email.com"} {
		_, err := store.Update(ctx, email, func(current *entity.Profile) (*entity.Profile, error) {
			return seedProfile(email), nil
		})
		require.NoError(t, err)
	}

	profiles, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 3)
}
