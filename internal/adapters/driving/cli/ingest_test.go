package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest", ingestCmd.Use)
}

func TestIngestCmd_Flags(t *testing.T) {
	watchFlag := ingestCmd.Flags().Lookup("watch")
	if assert.NotNil(t, watchFlag) {
		assert.Equal(t, "w", watchFlag.Shorthand)
		assert.Equal(t, "false", watchFlag.DefValue)
	}

	dirFlag := ingestCmd.Flags().Lookup("dir")
	if assert.NotNil(t, dirFlag) {
		assert.Equal(t, "d", dirFlag.Shorthand)
	}
}

func TestIngestCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = &mockIngestor{report: &domain.IngestReport{
		Files:    2,
		Chunks:   10,
		Indexed:  10,
		Duration: 1200 * time.Millisecond,
	}}

	out, err := runCommand(t, "ingest")

	require.NoError(t, err)
	assert.Contains(t, out, "FS55.pdf")
	assert.Contains(t, out, "Ingest complete.")
	assert.Contains(t, out, "Files indexed:   2")
	assert.Contains(t, out, "Chunks indexed:  10")
	assert.Contains(t, out, "1.2s")
}

func TestIngestCmd_ReportsFailures(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = &mockIngestor{report: &domain.IngestReport{
		Files:              1,
		FilesFailed:        1,
		PagesSkipped:       2,
		Chunks:             5,
		Indexed:            5,
		EmbeddingFallbacks: 3,
	}}

	out, err := runCommand(t, "ingest")

	require.NoError(t, err)
	assert.Contains(t, out, "Files failed:    1")
	assert.Contains(t, out, "Pages skipped:   2")
	assert.Contains(t, out, "Embedding fallbacks: 3")
}

func TestIngestCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = &mockIngestor{err: errors.New("source folder missing")}

	_, err := runCommand(t, "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest failed")
}

func TestIngestCmd_NotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	_, err := runCommand(t, "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding provider not configured")
}
