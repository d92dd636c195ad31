package driven

import (
	"context"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
)

// TranscriptStore appends completed conversation turns to a durable log.
// This is an optional service - when nil, turns are simply not logged.
// Append failures are logged and never fail the turn that produced them.
type TranscriptStore interface {
	// Append writes one turn to the transcript.
	Append(ctx context.Context, turn domain.Turn) error

	// Close releases resources.
	Close() error
}
