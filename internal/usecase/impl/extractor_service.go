package impl

import (
	"context"
	"log/slog"

	"profiler/internal/domain/entity"
	"profiler/internal/usecase"
)

type extractorService struct {
	logger *slog.Logger
}

// NewExtractorService creates the offline profile extractor.
func NewExtractorService(logger *slog.Logger) usecase.ExtractorUsecase {
	return &extractorService{logger: logger}
}

// ExtractProfiles groups records by user email and rebuilds one final
// profile per user in a single pass. Records without a user email cannot
// be attributed and are skipped.
func (s *extractorService) ExtractProfiles(_ context.Context, records []entity.OperationRecord) (map[string]*entity.Profile, error) {
	byUser := make(map[string][]entity.OperationRecord)
	skipped := 0
	for _, rec := range records {
		if rec.UserEmail == "" {
			skipped++

			continue
		}
		byUser[rec.UserEmail] = append(byUser[rec.UserEmail], rec)
	}

	s.logger.Info("extracting user profiles",
		slog.Int("records", len(records)),
		slog.Int("users", len(byUser)),
		slog.Int("unattributed", skipped))

	profiles := make(map[string]*entity.Profile, len(byUser))
	for email, userRecords := range byUser {
		profile := s.buildProfile(email, userRecords)
		profiles[email] = profile

		s.logger.Info("built profile from logs",
			slog.String("email", email),
			slog.String("type", string(profile.Type)),
			slog.Int("operations", profile.TotalOperations))
	}

	return profiles, nil
}

// buildProfile classifies one user's records and rebuilds the variant
// statistics. Unlike the online classifier there is no minimum-sample
// gate: the variant is decided from however many records exist.
func (s *extractorService) buildProfile(email string, records []entity.OperationRecord) *entity.Profile {
	var readOps, writeOps, expensiveOps int
	userName := "Unknown"
	for _, rec := range records {
		switch rec.Kind {
		case entity.KindRead:
			readOps++
		case entity.KindWrite:
			writeOps++
		case entity.KindSearchExpensive:
			expensiveOps++
		}
		if userName == "Unknown" && rec.UserName != "" {
			userName = rec.UserName
		}
	}

	target := entity.ProfileReadHeavy
	if total := len(records); total > 0 {
		expensivePct := float64(expensiveOps) * 100.0 / float64(total)
		writePct := float64(writeOps) * 100.0 / float64(total)
		switch {
		case expensivePct >= expensiveThreshold:
			target = entity.ProfileExpensiveSeeker
		case writePct >= writeHeavyThreshold:
			target = entity.ProfileWriteHeavy
		}
	}

	// Age is not recoverable from log lines.
	return entity.RebuildProfile(userName, email, 0, target, records)
}

func (s *extractorService) Report(profiles map[string]*entity.Profile) string {
	list := make([]*entity.Profile, 0, len(profiles))
	for _, p := range profiles {
		list = append(list, p)
	}

	return renderSummaryReport("PROFILE EXTRACTION REPORT", list)
}
