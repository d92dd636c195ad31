package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleSourcesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns indexed manuals", func(t *testing.T) {
		library := &mockLibrary{
			sources: []domain.SourceInfo{
				{Name: "FS55.pdf", Chunks: 42},
				{Name: "MS180.pdf", Chunks: 57},
			},
		}
		server := newTestServer(t, &mockAssistant{}, library)

		req := makeReadResourceRequest("wrench://sources")
		result, err := server.handleSourcesResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "FS55.pdf")
		assert.Contains(t, result.Contents[0].Text, `"chunks": 42`)
		assert.Contains(t, result.Contents[0].Text, "MS180.pdf")
	})

	t.Run("empty index returns empty list", func(t *testing.T) {
		server := newTestServer(t, &mockAssistant{}, &mockLibrary{})

		req := makeReadResourceRequest("wrench://sources")
		result, err := server.handleSourcesResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		library := &mockLibrary{err: errors.New("database error")}
		server := newTestServer(t, &mockAssistant{}, library)

		req := makeReadResourceRequest("wrench://sources")
		_, err := server.handleSourcesResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing sources")
	})

	t.Run("unknown URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &mockAssistant{}, &mockLibrary{})

		req := makeReadResourceRequest("wrench://bogus")
		_, err := server.handleSourcesResource(ctx, req)

		require.Error(t, err)
	})
}
