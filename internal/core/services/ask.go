package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driven"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
	"github.com/torque-labs/wrench-cli/internal/logger"
	"github.com/torque-labs/wrench-cli/internal/stream"
)

// fallbackInstructions is used when the prompt store cannot deliver the
// system prompt at all.
const fallbackInstructions = "You are a helpful assistant."

// Ensure AskService implements the interface.
var _ driving.Assistant = (*AskService)(nil)

// AskService answers questions grounded in the indexed manuals. One
// call runs the full turn: retrieve context, assemble the prompt,
// stream the generation, demultiplex it and log the transcript.
type AskService struct {
	embedder   *FallbackEmbedder
	index      driven.VectorIndex
	llm        driven.LLMService
	prompts    driven.PromptStore
	transcript driven.TranscriptStore
	builder    *PromptBuilder

	retrievalK int
}

// NewAskService creates an assistant service. The transcript store may
// be nil, which disables turn logging.
func NewAskService(
	embedder *FallbackEmbedder,
	index driven.VectorIndex,
	llm driven.LLMService,
	prompts driven.PromptStore,
	transcript driven.TranscriptStore,
	builder *PromptBuilder,
	settings domain.ChatSettings,
) *AskService {
	k := settings.RetrievalK
	if k <= 0 {
		k = domain.DefaultAppSettings().Chat.RetrievalK
	}

	return &AskService{
		embedder:   embedder,
		index:      index,
		llm:        llm,
		prompts:    prompts,
		transcript: transcript,
		builder:    builder,
		retrievalK: k,
	}
}

// Ask answers one user turn. Retrieval failures degrade the turn to an
// ungrounded answer rather than aborting it; the outcome field reports
// which happened. A generation transport failure returns the partial
// result alongside the error so callers can show what already arrived.
func (s *AskService) Ask(ctx context.Context, question string, history []domain.Turn, hooks driving.AskHooks) (*driving.AskResult, error) {
	// 1. Retrieve grounding context.
	contexts, outcome := s.retrieveForAsk(ctx, question)

	// 2. Log the user turn before generation, mirroring the shop log.
	s.logTurn(ctx, domain.RoleUser, question)

	// 3. Assemble the prompt.
	instructions, err := s.prompts.Load(driven.PromptSystem)
	if err != nil {
		logger.Warn("System prompt unavailable, using fallback: %v", err)
		instructions = fallbackInstructions
	}
	prompt := s.builder.Build(instructions, contexts, history, question)

	// 4. Stream the generation through the splitter.
	splitter := stream.New()
	var lastActivity, lastAnswer string

	streamErr := s.llm.Stream(ctx, prompt, driven.StreamOptions{}, func(fragment string) error {
		snap := splitter.Feed(fragment)
		if hooks.OnActivity != nil && snap.Activity != lastActivity {
			lastActivity = snap.Activity
			hooks.OnActivity(snap.Activity)
		}
		if hooks.OnAnswer != nil && snap.Answer != lastAnswer {
			lastAnswer = snap.Answer
			hooks.OnAnswer(snap.Answer)
		}
		return nil
	})

	// 5. Finalise whatever arrived, even on a broken stream.
	res := splitter.Finalize()
	result := &driving.AskResult{
		Answer: domain.Answer{
			Text:        res.Answer,
			Reasoning:   res.Reasoning,
			Suggestions: res.Suggestions,
			Contexts:    contexts,
		},
		Retrieval: outcome,
	}

	if streamErr != nil {
		return result, fmt.Errorf("generation stream: %w", streamErr)
	}

	// 6. Log the assistant turn.
	s.logTurn(ctx, domain.RoleAssistant, res.Answer)

	return result, nil
}

// retrieveForAsk fetches grounding chunks and classifies the outcome.
// An empty index and a failed query embedding both short-circuit
// retrieval; neither aborts the turn.
func (s *AskService) retrieveForAsk(ctx context.Context, question string) ([]domain.RetrievedChunk, driving.RetrievalOutcome) {
	contexts, err := s.Retrieve(ctx, question, s.retrievalK)
	switch {
	case err == nil:
		return contexts, driving.RetrievalOK
	case errors.Is(err, domain.ErrIndexEmpty):
		logger.Debug("Index is empty, answering without context")
		return nil, driving.RetrievalEmptyIndex
	default:
		logger.Warn("Retrieval degraded, answering without context: %v", err)
		return nil, driving.RetrievalDegraded
	}
}

// Retrieve embeds the query and returns the k nearest chunks by
// ascending distance. An empty index yields domain.ErrIndexEmpty so
// callers can distinguish "nothing indexed" from "no close matches".
func (s *AskService) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = s.retrievalK
	}

	count, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if count == 0 {
		return nil, domain.ErrIndexEmpty
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		// Distances against a zero vector would be meaningless, so a
		// failed query embedding short-circuits retrieval entirely.
		return nil, err
	}

	hits, err := s.index.Query(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return hits, nil
}

// ListModels reports the models the configured provider serves. When
// the provider is unreachable the listing falls back to the stock
// model names and carries the probe error.
func (s *AskService) ListModels(ctx context.Context) *domain.ModelListing {
	models, err := s.llm.ListModels(ctx)
	if err != nil {
		logger.Debug("Model listing failed, using fallback list: %v", err)
		listing := &domain.ModelListing{Live: false, Err: err}
		for _, name := range domain.FallbackLLMModels() {
			listing.Models = append(listing.Models, domain.ModelInfo{Name: name})
		}
		return listing
	}

	return &domain.ModelListing{Models: models, Live: true}
}

// logTurn appends one transcript record. Transcript failures are
// logged and swallowed; the log is write-only bookkeeping, never worth
// failing a turn over.
func (s *AskService) logTurn(ctx context.Context, role domain.TurnRole, content string) {
	if s.transcript == nil {
		return
	}

	turn := domain.Turn{
		ID:      uuid.New().String(),
		Role:    role,
		Content: content,
		At:      time.Now(),
	}
	if err := s.transcript.Append(ctx, turn); err != nil {
		logger.Warn("Transcript append failed: %v", err)
	}
}
