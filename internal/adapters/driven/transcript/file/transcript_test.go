package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
)

func TestNewTranscriptStore_CreatesLogFile(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewTranscriptStore(tmpDir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(tmpDir, "transcript.log"), store.Path())

	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestTranscriptStore_Append(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewTranscriptStore(tmpDir)
	require.NoError(t, err)
	defer store.Close()

	at := time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.Append(context.Background(), domain.Turn{
		Role:    domain.RoleUser,
		Content: "what fuel mix does the FS55 take?",
		At:      at,
	}))
	require.NoError(t, store.Append(context.Background(), domain.Turn{
		Role:    domain.RoleAssistant,
		Content: "Mix petrol and oil at 50:1.",
		At:      at.Add(3 * time.Second),
	}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "[2025-06-14T09:30:00Z] USER: what fuel mix does the FS55 take?")
	assert.Contains(t, text, "[2025-06-14T09:30:03Z] ASSISTANT: Mix petrol and oil at 50:1.")
	assert.Equal(t, 2, strings.Count(text, separator))
}

func TestTranscriptStore_Append_ZeroTimeGetsStamped(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewTranscriptStore(tmpDir)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Append(context.Background(), domain.Turn{
		Role:    domain.RoleUser,
		Content: "hello",
	}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	// A timestamp was filled in; the line must not start with the zero time.
	assert.True(t, strings.HasPrefix(string(data), "["))
	assert.NotContains(t, string(data), "0001-01-01")
}

func TestTranscriptStore_AppendsAcrossReopen(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewTranscriptStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), domain.Turn{
		Role: domain.RoleUser, Content: "first session",
	}))
	require.NoError(t, store.Close())

	reopened, err := NewTranscriptStore(tmpDir)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Append(context.Background(), domain.Turn{
		Role: domain.RoleUser, Content: "second session",
	}))

	data, err := os.ReadFile(reopened.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "first session")
	assert.Contains(t, string(data), "second session")
}
