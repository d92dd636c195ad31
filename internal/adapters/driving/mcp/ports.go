package mcp

import (
	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
)

// Ports holds the services the MCP server exposes as tools and resources.
type Ports struct {
	// Assistant answers questions grounded in the indexed manuals.
	Assistant driving.Assistant

	// Library reports on and searches the indexed manuals.
	Library driving.Library
}

// Validate checks that all required ports are present.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	if p.Library == nil {
		return ErrMissingLibrary
	}
	return nil
}
