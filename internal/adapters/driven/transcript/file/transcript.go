// Package file provides an append-only transcript log of assistant
// conversations. The log is plain text, one block per turn, meant for
// reading with a pager rather than parsing.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driven"
)

// Ensure TranscriptStore implements the interface.
var _ driven.TranscriptStore = (*TranscriptStore)(nil)

// separator closes each turn block in the log.
var separator = strings.Repeat("-", 40)

// TranscriptStore appends conversation turns to a single log file.
type TranscriptStore struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewTranscriptStore opens the transcript log, creating it if needed.
// If dataDir is empty, defaults to ~/.wrench/data.
func NewTranscriptStore(dataDir string) (*TranscriptStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".wrench", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	path := filepath.Join(dataDir, "transcript.log")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open transcript log: %w", err)
	}

	return &TranscriptStore{
		path: path,
		file: file,
	}, nil
}

// Append writes one turn to the log. Turns are timestamped with their
// completion time, falling back to now for turns that never got one.
func (s *TranscriptStore) Append(_ context.Context, turn domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := turn.At
	if at.IsZero() {
		at = time.Now()
	}

	entry := fmt.Sprintf("[%s] %s: %s\n%s\n",
		at.Format(time.RFC3339),
		strings.ToUpper(turn.Role.String()),
		turn.Content,
		separator,
	)

	if _, err := s.file.WriteString(entry); err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

// Path returns the transcript log file path.
func (s *TranscriptStore) Path() string {
	return s.path
}

// Close releases the log file handle.
func (s *TranscriptStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
