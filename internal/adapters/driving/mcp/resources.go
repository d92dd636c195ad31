package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme prefixes all resource URIs served by this server.
const uriScheme = "wrench://"

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Indexed manuals and their chunk counts",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)
}

// sourceEntry is the JSON shape of one indexed manual in the sources
// resource.
type sourceEntry struct {
	Name   string `json:"name"`
	Chunks int    `json:"chunks"`
}

func (s *Server) handleSourcesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if req.Params.URI != uriScheme+"sources" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	sources, err := s.ports.Library.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	entries := make([]sourceEntry, len(sources))
	for i, src := range sources {
		entries[i] = sourceEntry{Name: src.Name, Chunks: src.Chunks}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding sources: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}
