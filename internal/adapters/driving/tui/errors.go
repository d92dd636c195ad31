package tui

import "errors"

// Errors returned during TUI construction.
var (
	// ErrMissingPorts is returned when no ports are provided.
	ErrMissingPorts = errors.New("ports are required")

	// ErrMissingAssistant is returned when the assistant service is missing.
	ErrMissingAssistant = errors.New("assistant service is required")
)
