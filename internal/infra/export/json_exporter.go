// Package export serializes behavioral profiles to JSON files.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"profiler/internal/domain/entity"
	"profiler/internal/domain/service"
	"profiler/internal/util"

	"github.com/pkg/errors"
)

type jsonExporter struct {
	dir    string
	suffix string
	logger *slog.Logger
}

// NewJSONExporter creates an exporter writing one pretty-printed JSON
// file per profile into dir. The suffix distinguishes live exports
// ("profile") from offline extractions ("extracted").
func NewJSONExporter(dir, suffix string, logger *slog.Logger) (service.ProfileExporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create export directory %s", dir)
	}

	return &jsonExporter{dir: dir, suffix: suffix, logger: logger}, nil
}

// ExportProfile serializes one profile. The profileType discriminator is
// part of the serialized record so the variant survives deserialization.
func (e *jsonExporter) ExportProfile(_ context.Context, profile *entity.Profile) (string, error) {
	if profile == nil {
		return "", errors.New("profile is nil")
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", errors.Wrapf(err, "marshal profile for %s", profile.UserEmail)
	}

	fileName := fmt.Sprintf("%s_%s_%s.json",
		util.SanitizeFilename(profile.UserEmail), profile.Type, e.suffix)
	path := filepath.Join(e.dir, fileName)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write profile file %s", path)
	}

	e.logger.Info("exported profile",
		slog.String("email", profile.UserEmail),
		slog.String("path", path))

	return path, nil
}

// ExportAll writes every profile, continuing past per-profile failures.
func (e *jsonExporter) ExportAll(ctx context.Context, profiles []*entity.Profile) ([]string, error) {
	paths := make([]string, 0, len(profiles))
	failed := 0

	for _, profile := range profiles {
		if profile == nil {
			failed++

			continue
		}

		path, err := e.ExportProfile(ctx, profile)
		if err != nil {
			failed++
			e.logger.Error("failed to export profile",
				slog.String("email", profile.UserEmail),
				slog.Any("error", err))

			continue
		}
		paths = append(paths, path)
	}

	e.logger.Info("profile export complete",
		slog.Int("exported", len(paths)),
		slog.Int("failed", failed),
		slog.String("dir", e.dir))

	if failed > 0 {
		return paths, errors.Errorf("failed to export %d of %d profiles", failed, len(profiles))
	}

	return paths, nil
}
