package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
)

var _ driving.Assistant = (*stubAssistant)(nil)

type stubAssistant struct {
	result *driving.AskResult
	err    error

	lastQuestion string
	lastHistory  []domain.Turn
}

func (s *stubAssistant) Ask(_ context.Context, question string, history []domain.Turn, _ driving.AskHooks) (*driving.AskResult, error) {
	s.lastQuestion = question
	s.lastHistory = history
	if s.err != nil {
		return s.result, s.err
	}
	if s.result == nil {
		return &driving.AskResult{Retrieval: driving.RetrievalOK}, nil
	}
	return s.result, nil
}

func (s *stubAssistant) Retrieve(context.Context, string, int) ([]domain.RetrievedChunk, error) {
	return nil, nil
}

func (s *stubAssistant) ListModels(context.Context) *domain.ModelListing {
	return &domain.ModelListing{}
}

func newTestApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.resize(80, 24)
	return app
}

// drainTurn blocks until the in-flight ask goroutine has finished,
// consuming the events it produced.
func drainTurn(t *testing.T, app *App) {
	t.Helper()
	for range app.events {
	}
}

func TestNewApp_Validates(t *testing.T) {
	_, err := NewApp(nil)
	assert.ErrorIs(t, err, ErrMissingPorts)

	_, err = NewApp(&Ports{})
	assert.ErrorIs(t, err, ErrMissingAssistant)

	app, err := NewApp(&Ports{Assistant: &stubAssistant{}})
	require.NoError(t, err)
	assert.NotNil(t, app)
}

func TestApp_InitialView(t *testing.T) {
	app, err := NewApp(&Ports{Assistant: &stubAssistant{}})
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_ReadyAfterResize(t *testing.T) {
	app, err := NewApp(&Ports{Assistant: &stubAssistant{}})
	require.NoError(t, err)

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.True(t, app.ready)
	view := app.View()
	assert.Contains(t, view, "Wrench")
	assert.Contains(t, view, "enter: send")
}

func TestApp_EnterStartsTurn(t *testing.T) {
	stub := &stubAssistant{}
	app := newTestApp(t, &Ports{Assistant: stub})

	app.input.SetValue("engine will not start")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, app.waiting)
	assert.NotNil(t, cmd)
	assert.Contains(t, app.View(), "You: engine will not start")

	drainTurn(t, app)
	assert.Equal(t, "engine will not start", stub.lastQuestion)
}

func TestApp_EnterIgnoresBlankInput(t *testing.T) {
	app := newTestApp(t, &Ports{Assistant: &stubAssistant{}})

	app.input.SetValue("   ")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, app.waiting)
}

func TestApp_StreamedAnswerShows(t *testing.T) {
	app := newTestApp(t, &Ports{Assistant: &stubAssistant{}})
	app.waiting = true
	app.pendingQuestion = "spark plug gap"

	app.Update(answerMsg{answer: "The gap is 0.5"})

	assert.Contains(t, app.View(), "The gap is 0.5")
}

func TestApp_TurnDone(t *testing.T) {
	app := newTestApp(t, &Ports{Assistant: &stubAssistant{}})
	app.waiting = true
	app.pendingQuestion = "spark plug gap"

	app.Update(turnDoneMsg{result: &driving.AskResult{
		Answer: domain.Answer{
			Text:        "Set the gap to 0.5 mm.",
			Suggestions: []string{"Which plug type fits?"},
			Contexts:    []domain.RetrievedChunk{{Source: "FS55.pdf", Page: 12}},
		},
		Retrieval: driving.RetrievalOK,
	}})

	assert.False(t, app.waiting)
	require.Len(t, app.history, 2)
	assert.Equal(t, domain.RoleUser, app.history[0].Role)
	assert.Equal(t, "spark plug gap", app.history[0].Content)
	assert.Equal(t, domain.RoleAssistant, app.history[1].Role)

	view := app.View()
	assert.Contains(t, view, "Set the gap to 0.5 mm.")
	assert.Contains(t, view, "Sources: FS55.pdf (Pg 12)")
	assert.Contains(t, view, "1) Which plug type fits?")
}

func TestApp_TurnDoneEmptyIndex(t *testing.T) {
	app := newTestApp(t, &Ports{Assistant: &stubAssistant{}})
	app.waiting = true
	app.pendingQuestion = "anything"

	app.Update(turnDoneMsg{result: &driving.AskResult{
		Answer:    domain.Answer{Text: "General advice only."},
		Retrieval: driving.RetrievalEmptyIndex,
	}})

	assert.Contains(t, app.View(), "Not grounded: nothing is indexed yet.")
}

func TestApp_TurnFailed(t *testing.T) {
	app := newTestApp(t, &Ports{Assistant: &stubAssistant{}})
	app.waiting = true
	app.pendingQuestion = "fuel filter"

	app.Update(turnFailedMsg{
		err:     errors.New("connection reset"),
		partial: &driving.AskResult{Answer: domain.Answer{Text: "The filt"}},
	})

	assert.False(t, app.waiting)
	assert.Empty(t, app.history, "failed turns stay out of the history window")
	view := app.View()
	assert.Contains(t, view, "The filt")
	assert.Contains(t, view, "Turn failed: connection reset")
}

func TestApp_SuggestionPrefill(t *testing.T) {
	app := newTestApp(t, &Ports{Assistant: &stubAssistant{}})
	app.suggestions = []string{"Which plug type fits?", "How often to replace?"}

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})

	assert.Equal(t, "How often to replace?", app.input.Value())
}

func TestApp_SuggestionDigitPassesThroughWhileTyping(t *testing.T) {
	app := newTestApp(t, &Ports{Assistant: &stubAssistant{}})
	app.suggestions = []string{"Which plug type fits?"}
	app.input.SetValue("part 1")

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})

	assert.Equal(t, "part 11", app.input.Value())
}

func TestApp_HistoryWindow(t *testing.T) {
	stub := &stubAssistant{}
	app := newTestApp(t, &Ports{Assistant: stub, HistoryWindow: 2})
	for i := 0; i < 3; i++ {
		app.history = append(app.history,
			domain.Turn{Role: domain.RoleUser, Content: "q"},
			domain.Turn{Role: domain.RoleAssistant, Content: "a"},
		)
	}

	app.input.SetValue("and the chain?")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drainTurn(t, app)

	require.Len(t, stub.lastHistory, 2)
	assert.Equal(t, domain.RoleUser, stub.lastHistory[0].Role)
	assert.Equal(t, domain.RoleAssistant, stub.lastHistory[1].Role)
}

func TestApp_QuitKeys(t *testing.T) {
	app := newTestApp(t, &Ports{Assistant: &stubAssistant{}})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestContextLabels_Dedup(t *testing.T) {
	labels := contextLabels([]domain.RetrievedChunk{
		{Source: "FS55.pdf", Page: 12},
		{Source: "FS55.pdf", Page: 12},
		{Source: "FS55.pdf", Page: 40},
	})

	assert.Equal(t, []string{"FS55.pdf (Pg 12)", "FS55.pdf (Pg 40)"}, labels)
}
