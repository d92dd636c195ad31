// Package mcp provides a Model Context Protocol server that exposes
// the assistant to agent clients such as Claude Code and Cursor.
package mcp

import "errors"

var (
	// ErrMissingAssistant indicates the assistant service was not provided.
	ErrMissingAssistant = errors.New("mcp: assistant service is required")

	// ErrMissingLibrary indicates the library service was not provided.
	ErrMissingLibrary = errors.New("mcp: library service is required")
)
