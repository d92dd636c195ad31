package mcp

import (
	"context"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
)

// mockAssistant is a mock implementation of driving.Assistant.
type mockAssistant struct {
	result  *driving.AskResult
	chunks  []domain.RetrievedChunk
	listing *domain.ModelListing
	err     error

	lastQuestion string
	lastQuery    string
	lastK        int
}

func (m *mockAssistant) Ask(
	_ context.Context,
	question string,
	_ []domain.Turn,
	_ driving.AskHooks,
) (*driving.AskResult, error) {
	m.lastQuestion = question
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockAssistant) Retrieve(_ context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	m.lastQuery = query
	m.lastK = k
	return m.chunks, m.err
}

func (m *mockAssistant) ListModels(_ context.Context) *domain.ModelListing {
	return m.listing
}

// mockLibrary is a mock implementation of driving.Library.
type mockLibrary struct {
	sources []domain.SourceInfo
	matches []domain.ScanMatch
	err     error
}

func (m *mockLibrary) Sources(_ context.Context) ([]domain.SourceInfo, error) {
	return m.sources, m.err
}

func (m *mockLibrary) Reset(_ context.Context) error {
	return m.err
}

func (m *mockLibrary) DeleteSource(_ context.Context, _ string) error {
	return m.err
}

func (m *mockLibrary) Scan(_ context.Context, _ driving.ScanOptions) ([]domain.ScanMatch, error) {
	return m.matches, m.err
}
