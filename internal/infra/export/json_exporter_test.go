package export

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"profiler/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExporter(t *testing.T, suffix string) (string, *jsonExporter) {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exporter, err := NewJSONExporter(dir, suffix, logger)
	require.NoError(t, err)

	return dir, exporter.(*jsonExporter)
}

func sampleProfile() *entity.Profile {
	p := entity.NewProfile("Alice", "alice@email.com", 28, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	p.Append(entity.OperationRecord{
		OperationName: "getAllProducts",
		Kind:          entity.KindRead,
		Timestamp:     time.Date(2024, 1, 1, 10, 1, 0, 0, time.UTC),
		UserName:      "Alice",
		UserEmail:     "alice@email.com",
	})

	return p
}

func TestExportProfile_FileNameCarriesUserAndVariant(t *testing.T) {
	dir, exporter := newTestExporter(t, "profile")

	path, err := exporter.ExportProfile(context.Background(), sampleProfile())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "alice_email_com_READ_HEAVY_profile.json"), path)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestExportProfile_DiscriminatorSurvivesRoundTrip(t *testing.T) {
	_, exporter := newTestExporter(t, "profile")

	path, err := exporter.ExportProfile(context.Background(), sampleProfile())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded entity.Profile
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, entity.ProfileReadHeavy, decoded.Type)
	require.NotNil(t, decoded.ReadStats)
	assert.Nil(t, decoded.WriteStats)
	assert.Nil(t, decoded.ExpensiveStats)
	assert.Equal(t, "alice@email.com", decoded.UserEmail)
	assert.Equal(t, 1, decoded.TotalOperations)
	require.Len(t, decoded.History, 1)
	assert.Equal(t, "getAllProducts", decoded.History[0].OperationName)
}

func TestExportProfile_OnlyActiveVariantIsSerialized(t *testing.T) {
	_, exporter := newTestExporter(t, "profile")

	path, err := exporter.ExportProfile(context.Background(), sampleProfile())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "READ_HEAVY", raw["profileType"])
	assert.Contains(t, raw, "readStats")
	assert.NotContains(t, raw, "writeStats")
	assert.NotContains(t, raw, "expensiveStats")
}

func TestExportProfile_RejectsNilProfile(t *testing.T) {
	_, exporter := newTestExporter(t, "profile")

	_, err := exporter.ExportProfile(context.Background(), nil)
	require.Error(t, err)
}

func TestExportAll_ContinuesPastFailures(t *testing.T) {
	dir, exporter := newTestExporter(t, "extracted")

	profiles := []*entity.Profile{
		sampleProfile(),
		nil,
		entity.NewProfile("Bob", "bob@email.com", 35, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)),
	}

	paths, err := exporter.ExportAll(context.Background(), profiles)
	require.Error(t, err)
	assert.Len(t, paths, 2)

	files, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Len(t, files, 2)
}
