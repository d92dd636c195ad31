package tui

import (
	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
)

// Ports aggregates the services the chat session drives.
type Ports struct {
	// Assistant answers chat turns.
	Assistant driving.Assistant

	// HistoryWindow caps the number of prior turns sent with each ask.
	// Zero sends everything.
	HistoryWindow int
}

// Validate checks that all required ports are present.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}
