package tui

import "github.com/torque-labs/wrench-cli/internal/core/ports/driving"

// Stream events bridged from the ask goroutine into the update loop.

// activityMsg reports a change of the reasoning activity label.
type activityMsg struct {
	label string
}

// answerMsg carries the full displayed answer so far.
type answerMsg struct {
	answer string
}

// turnDoneMsg ends a turn with its final result.
type turnDoneMsg struct {
	result *driving.AskResult
}

// turnFailedMsg ends a turn with an error. The partial result holds
// whatever answer text had already streamed.
type turnFailedMsg struct {
	err     error
	partial *driving.AskResult
}
