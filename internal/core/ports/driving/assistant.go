package driving

import (
	"context"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
)

// Assistant answers technician questions over the indexed manuals.
type Assistant interface {
	// Ask runs one full turn: retrieve context, assemble the prompt,
	// stream the model, and demultiplex the response. Hooks fire as the
	// stream progresses. Retrieval problems (empty index, failed query
	// embedding) degrade the turn rather than failing it; the outcome is
	// recorded on the result. A transport error mid-stream returns both
	// the partial result and the error.
	Ask(ctx context.Context, question string, history []domain.Turn, hooks AskHooks) (*AskResult, error)

	// Retrieve runs similarity search only, for diagnostics. Returns
	// domain.ErrIndexEmpty when nothing has been ingested and
	// domain.ErrQueryEmbedding when the query cannot be embedded.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)

	// ListModels reports the models the configured LLM provider serves.
	// When the live listing fails the result carries the configured
	// fallback list and the listing error.
	ListModels(ctx context.Context) *domain.ModelListing
}

// AskHooks receive streaming updates during a turn. Any hook may be nil.
type AskHooks struct {
	// OnActivity fires when the reasoning activity label changes.
	OnActivity func(label string)

	// OnAnswer fires when the displayed answer grows. The argument is
	// the full displayed answer so far, always a prefix of the final
	// answer text.
	OnAnswer func(answer string)
}

// RetrievalOutcome describes how context retrieval went for one turn.
type RetrievalOutcome string

// Retrieval outcomes.
const (
	// RetrievalOK means context chunks were retrieved.
	RetrievalOK RetrievalOutcome = "ok"

	// RetrievalEmptyIndex means nothing has been ingested yet.
	RetrievalEmptyIndex RetrievalOutcome = "empty_index"

	// RetrievalDegraded means the query embedding failed and retrieval
	// was skipped.
	RetrievalDegraded RetrievalOutcome = "degraded"
)

// AskResult is one completed (or finalised-partial) assistant turn.
type AskResult struct {
	// Answer is the demultiplexed response.
	Answer domain.Answer

	// Retrieval records whether and how context was retrieved.
	Retrieval RetrievalOutcome
}
