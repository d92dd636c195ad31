package services

import (
	"fmt"
	"strings"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
)

// NoContextFound is the database-context line used when retrieval
// produced nothing to ground the answer on. It tells the model
// explicitly that no manual pages back this turn.
const NoContextFound = "No local manual pages found."

// promptTemplate is the fixed generation request layout. Section order
// and headings are part of the assistant's contract with the model.
const promptTemplate = `
### SYSTEM INSTRUCTIONS (IMMUTABLE)
%s

### DATABASE CONTEXT
%s

### CONVERSATION HISTORY
%s

### CURRENT USER INPUT
%s

### EXECUTION
1. You are WRENCH, the workshop assistant.
2. If the user is missing information (like a serial number) but says they don't have it, ACCEPT IT and move on with a warning.
3. DO NOT simulate the user.
4. Output ONLY your response.
`

// DefaultHistoryWindow is how many trailing conversation turns are kept
// in the prompt. Older turns are dropped, not summarised.
const DefaultHistoryWindow = 6

// PromptBuilder composes generation requests. It is pure formatting:
// malformed inputs are the caller's problem, and identical inputs
// always produce identical prompts.
type PromptBuilder struct {
	historyWindow int
}

// PromptOption configures a PromptBuilder.
type PromptOption func(*PromptBuilder)

// WithHistoryWindow sets how many trailing turns survive into the
// prompt. Non-positive values keep the default.
func WithHistoryWindow(n int) PromptOption {
	return func(b *PromptBuilder) {
		if n > 0 {
			b.historyWindow = n
		}
	}
}

// NewPromptBuilder creates a prompt builder with the given options.
func NewPromptBuilder(opts ...PromptOption) *PromptBuilder {
	b := &PromptBuilder{historyWindow: DefaultHistoryWindow}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles the full generation request.
func (b *PromptBuilder) Build(instructions string, contexts []domain.RetrievedChunk, history []domain.Turn, input string) string {
	return fmt.Sprintf(promptTemplate,
		instructions,
		b.contextSection(contexts),
		b.historySection(history),
		input,
	)
}

// contextSection renders retrieved chunks as labelled source blocks so
// the model can cite them.
func (b *PromptBuilder) contextSection(contexts []domain.RetrievedChunk) string {
	if len(contexts) == 0 {
		return NoContextFound
	}

	var section strings.Builder
	for _, chunk := range contexts {
		fmt.Fprintf(&section, "\n--- [Source: %s] ---\n%s\n", chunk.Label(), chunk.Text)
	}
	return section.String()
}

// historySection renders the last historyWindow turns as "ROLE: text"
// lines.
func (b *PromptBuilder) historySection(history []domain.Turn) string {
	if len(history) > b.historyWindow {
		history = history[len(history)-b.historyWindow:]
	}

	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, strings.ToUpper(string(turn.Role))+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

// HistoryWindow returns the configured turn window.
func (b *PromptBuilder) HistoryWindow() int {
	return b.historyWindow
}
