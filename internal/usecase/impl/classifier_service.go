package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"profiler/config"
	"profiler/internal/domain/entity"
	"profiler/internal/domain/repository"
	"profiler/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Classification thresholds over the full operation history. Expensive
// wins over write, write over read; a migration only happens when the
// profile is not already the target variant.
const (
	readHeavyThreshold  = 60.0
	writeHeavyThreshold = 60.0
	expensiveThreshold  = 50.0
)

type classifierService struct {
	store    repository.ProfileStore
	cfg      *config.Config
	logger   *slog.Logger
	validate *validator.Validate
}

// NewClassifierService creates the online profiling engine.
func NewClassifierService(store repository.ProfileStore, cfg *config.Config, logger *slog.Logger) usecase.ClassifierUsecase {
	if cfg.Profiling == nil {
		cfg.Profiling = &config.ProfilingConfig{MinSampleSize: 5}
	}

	return &classifierService{
		store:    store,
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(),
	}
}

// RecordOperation validates the input, then runs the append, statistic
// update and classification as one critical section for the user key.
func (s *classifierService) RecordOperation(ctx context.Context, input *usecase.RecordOperationInput) (*entity.Profile, error) {
	if input == nil {
		return nil, fmt.Errorf("record operation: input is nil")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("record operation: invalid input: %w", err)
	}

	now := time.Now()
	rec := entity.OperationRecord{
		ID:            uuid.New(),
		OperationName: input.OperationName,
		Kind:          input.Kind,
		Timestamp:     now,
		UserName:      input.UserName,
		UserEmail:     input.UserEmail,
		ProductID:     input.ProductID,
		ProductName:   input.ProductName,
		ProductPrice:  input.ProductPrice,
		Note:          input.Note,
	}

	profile, err := s.store.Update(ctx, input.UserEmail, func(current *entity.Profile) (*entity.Profile, error) {
		if current == nil {
			current = entity.NewProfile(input.UserName, input.UserEmail, input.UserAge, now)
			s.logger.Info("created initial profile",
				slog.String("user", input.UserName),
				slog.String("email", input.UserEmail))
		}

		current.Append(rec)

		target, ok := s.classify(current)
		if !ok || target == current.Type {
			return current, nil
		}

		migrated := current.Migrate(target)
		s.logger.Info("profile type changed",
			slog.String("user", migrated.UserName),
			slog.String("from", string(current.Type)),
			slog.String("to", string(migrated.Type)))

		return migrated, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Debug("logged operation",
		slog.String("operation", input.OperationName),
		slog.String("kind", string(input.Kind)),
		slog.String("user", input.UserName))

	return profile, nil
}

// classify picks the variant the profile should be in, or reports false
// when the sample is still too small to decide.
func (s *classifierService) classify(p *entity.Profile) (entity.ProfileType, bool) {
	if p.TotalOperations < s.cfg.Profiling.MinSampleSize {
		return "", false
	}

	total := float64(p.TotalOperations)
	expensivePct := float64(p.CountExpensiveViews()) * 100.0 / total
	writePct := float64(p.CountKind(entity.KindWrite)) * 100.0 / total
	readPct := float64(p.CountKind(entity.KindRead)) * 100.0 / total

	switch {
	case expensivePct >= expensiveThreshold:
		return entity.ProfileExpensiveSeeker, true
	case writePct >= writeHeavyThreshold:
		return entity.ProfileWriteHeavy, true
	case readPct >= readHeavyThreshold:
		return entity.ProfileReadHeavy, true
	default:
		return p.Type, true
	}
}

func (s *classifierService) GetProfile(ctx context.Context, userEmail string) (*entity.Profile, error) {
	profile, err := s.store.Get(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

func (s *classifierService) ListProfiles(ctx context.Context) ([]*entity.Profile, error) {
	profiles, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	return profiles, nil
}

func (s *classifierService) SummaryReport(ctx context.Context) (string, error) {
	profiles, err := s.store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list profiles: %w", err)
	}

	return renderSummaryReport("USER PROFILING SUMMARY REPORT", profiles), nil
}
