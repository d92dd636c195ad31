package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
)

// defaultSearchLimit caps search_manuals results when the client does
// not ask for a specific count.
const defaultSearchLimit = 5

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_manuals",
		Description: "Search the indexed workshop manuals by similarity. Returns the closest matching passages with their source file and page number.",
	}, s.handleSearchManuals)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_assistant",
		Description: "Ask the workshop assistant a question. The answer is grounded in the indexed manuals and cites the pages it drew on.",
	}, s.handleAskAssistant)
}

// SearchManualsInput is the input for the search_manuals tool.
type SearchManualsInput struct {
	Query string `json:"query" jsonschema:"what to look for in the indexed manuals"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

// SearchManualsResult is a single passage returned by search_manuals.
type SearchManualsResult struct {
	Source   string  `json:"source"`
	Page     int     `json:"page"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

// SearchManualsOutput is the output of the search_manuals tool.
type SearchManualsOutput struct {
	Results []SearchManualsResult `json:"results"`
	Note    string                `json:"note,omitempty"`
}

func (s *Server) handleSearchManuals(ctx context.Context, _ *mcp.CallToolRequest, input SearchManualsInput) (*mcp.CallToolResult, SearchManualsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	chunks, err := s.ports.Assistant.Retrieve(ctx, input.Query, limit)
	if err != nil {
		if errors.Is(err, domain.ErrIndexEmpty) {
			return nil, SearchManualsOutput{
				Results: []SearchManualsResult{},
				Note:    "nothing is indexed yet; run 'wrench ingest' first",
			}, nil
		}
		return nil, SearchManualsOutput{}, fmt.Errorf("searching manuals: %w", err)
	}

	results := make([]SearchManualsResult, len(chunks))
	for i, chunk := range chunks {
		results[i] = SearchManualsResult{
			Source:   chunk.Source,
			Page:     chunk.Page,
			Text:     chunk.Text,
			Distance: chunk.Distance,
		}
	}

	return nil, SearchManualsOutput{Results: results}, nil
}

// AskAssistantInput is the input for the ask_assistant tool.
type AskAssistantInput struct {
	Question string `json:"question" jsonschema:"the question to ask about the manuals"`
}

// AskAssistantOutput is the output of the ask_assistant tool.
type AskAssistantOutput struct {
	Answer      string   `json:"answer"`
	Sources     []string `json:"sources"`
	Suggestions []string `json:"suggestions,omitempty"`
	Retrieval   string   `json:"retrieval"`
}

func (s *Server) handleAskAssistant(ctx context.Context, _ *mcp.CallToolRequest, input AskAssistantInput) (*mcp.CallToolResult, AskAssistantOutput, error) {
	// Each tool call is a standalone turn; agent clients carry their own
	// conversation state.
	result, err := s.ports.Assistant.Ask(ctx, input.Question, nil, driving.AskHooks{})
	if err != nil {
		return nil, AskAssistantOutput{}, fmt.Errorf("asking assistant: %w", err)
	}

	sources := make([]string, 0, len(result.Answer.Contexts))
	seen := make(map[string]struct{}, len(result.Answer.Contexts))
	for _, chunk := range result.Answer.Contexts {
		label := chunk.Label()
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		sources = append(sources, label)
	}

	return nil, AskAssistantOutput{
		Answer:      result.Answer.Text,
		Sources:     sources,
		Suggestions: result.Answer.Suggestions,
		Retrieval:   string(result.Retrieval),
	}, nil
}
