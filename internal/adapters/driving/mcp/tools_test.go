package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
)

func newTestServer(t *testing.T, assistant *mockAssistant, library *mockLibrary) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Assistant: assistant, Library: library})
	require.NoError(t, err)
	return server
}

func TestServer_handleSearchManuals(t *testing.T) {
	ctx := context.Background()

	t.Run("returns passages", func(t *testing.T) {
		assistant := &mockAssistant{
			chunks: []domain.RetrievedChunk{
				{
					ID:       "chunk-1",
					Source:   "FS55.pdf",
					Page:     12,
					Text:     "Carburetor adjustment procedure",
					Distance: 0.31,
				},
			},
		}
		server := newTestServer(t, assistant, &mockLibrary{})

		input := SearchManualsInput{Query: "carburetor", Limit: 10}
		_, output, err := server.handleSearchManuals(ctx, nil, input)

		require.NoError(t, err)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "FS55.pdf", output.Results[0].Source)
		assert.Equal(t, 12, output.Results[0].Page)
		assert.Equal(t, "Carburetor adjustment procedure", output.Results[0].Text)
		assert.Equal(t, 0.31, output.Results[0].Distance)
		assert.Empty(t, output.Note)
		assert.Equal(t, "carburetor", assistant.lastQuery)
		assert.Equal(t, 10, assistant.lastK)
	})

	t.Run("default limit is 5", func(t *testing.T) {
		assistant := &mockAssistant{}
		server := newTestServer(t, assistant, &mockLibrary{})

		input := SearchManualsInput{Query: "chain tension"}
		_, _, err := server.handleSearchManuals(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 5, assistant.lastK)
	})

	t.Run("empty index returns note instead of error", func(t *testing.T) {
		assistant := &mockAssistant{err: domain.ErrIndexEmpty}
		server := newTestServer(t, assistant, &mockLibrary{})

		input := SearchManualsInput{Query: "spark plug"}
		_, output, err := server.handleSearchManuals(ctx, nil, input)

		require.NoError(t, err)
		assert.Empty(t, output.Results)
		assert.Contains(t, output.Note, "nothing is indexed yet")
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		assistant := &mockAssistant{err: errors.New("store offline")}
		server := newTestServer(t, assistant, &mockLibrary{})

		input := SearchManualsInput{Query: "spark plug"}
		_, _, err := server.handleSearchManuals(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "searching manuals")
		assert.Contains(t, err.Error(), "store offline")
	})
}

func TestServer_handleAskAssistant(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with sources and suggestions", func(t *testing.T) {
		assistant := &mockAssistant{
			result: &driving.AskResult{
				Answer: domain.Answer{
					Text:        "Tighten the chain until it snaps back against the bar.",
					Suggestions: []string{"How do I check chain lubrication?"},
					Contexts: []domain.RetrievedChunk{
						{Source: "MS180.pdf", Page: 7},
						{Source: "MS180.pdf", Page: 7},
						{Source: "MS180.pdf", Page: 9},
					},
				},
				Retrieval: driving.RetrievalOK,
			},
		}
		server := newTestServer(t, assistant, &mockLibrary{})

		input := AskAssistantInput{Question: "How tight should the chain be?"}
		_, output, err := server.handleAskAssistant(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "Tighten the chain until it snaps back against the bar.", output.Answer)
		assert.Equal(t, []string{"MS180.pdf (Pg 7)", "MS180.pdf (Pg 9)"}, output.Sources)
		assert.Equal(t, []string{"How do I check chain lubrication?"}, output.Suggestions)
		assert.Equal(t, "ok", output.Retrieval)
		assert.Equal(t, "How tight should the chain be?", assistant.lastQuestion)
	})

	t.Run("reports degraded retrieval", func(t *testing.T) {
		assistant := &mockAssistant{
			result: &driving.AskResult{
				Answer:    domain.Answer{Text: "General guidance only."},
				Retrieval: driving.RetrievalEmptyIndex,
			},
		}
		server := newTestServer(t, assistant, &mockLibrary{})

		input := AskAssistantInput{Question: "What oil mix?"}
		_, output, err := server.handleAskAssistant(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "empty_index", output.Retrieval)
		assert.Empty(t, output.Sources)
	})

	t.Run("returns error on ask failure", func(t *testing.T) {
		assistant := &mockAssistant{err: errors.New("model unreachable")}
		server := newTestServer(t, assistant, &mockLibrary{})

		input := AskAssistantInput{Question: "What oil mix?"}
		_, _, err := server.handleAskAssistant(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "asking assistant")
		assert.Contains(t, err.Error(), "model unreachable")
	})
}
