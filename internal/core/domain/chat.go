package domain

import "time"

// TurnRole identifies who produced a conversation turn.
type TurnRole string

// Conversation roles.
const (
	// RoleUser is the technician asking a question.
	RoleUser TurnRole = "user"

	// RoleAssistant is the assistant's answer.
	RoleAssistant TurnRole = "assistant"
)

// IsValid returns true if the role is recognised.
func (r TurnRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r TurnRole) String() string {
	return string(r)
}

// Turn is one utterance in an assistant conversation. Turns make up the
// bounded history window fed into the prompt and the transcript log.
type Turn struct {
	// ID is a unique identifier for the turn.
	ID string

	// Role is who spoke.
	Role TurnRole

	// Content is the utterance text. For assistant turns this is the
	// final answer only, never the reasoning.
	Content string

	// At is when the turn completed.
	At time.Time
}

// Answer is the fully demultiplexed result of one assistant response.
type Answer struct {
	// Text is the user-facing answer with all stream markup removed.
	Text string

	// Reasoning is the model's chain-of-thought, empty for models that
	// do not emit one.
	Reasoning string

	// Suggestions are follow-up questions offered to the user. Empty
	// when the model emitted none or the block failed to parse.
	Suggestions []string

	// Contexts are the retrieved chunks the answer was grounded on,
	// in ascending distance order.
	Contexts []RetrievedChunk
}
