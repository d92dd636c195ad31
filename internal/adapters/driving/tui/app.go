// Package tui implements the interactive chat session over the
// assistant service, following the Elm architecture.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
)

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// turnEventBuffer sizes the stream event channel. Hooks fire on the
// ask goroutine; the buffer keeps them from stalling generation while
// the update loop catches up.
const turnEventBuffer = 64

// chromeRows is the screen height taken by everything that is not the
// conversation viewport: title, input, suggestion line, status bar.
const chromeRows = 4

// turnRecord is one completed exchange as shown in the transcript.
type turnRecord struct {
	question string
	result   *driving.AskResult
	failed   error
}

// App is the chat session model.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles Styles

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	// history holds completed turns; a window of it accompanies each
	// ask so follow-ups resolve references like "it" or "that part".
	history []domain.Turn
	records []turnRecord

	// In-flight turn state.
	waiting         bool
	pendingQuestion string
	streamAnswer    string
	activity        string
	events          chan tea.Msg

	suggestions []string
	err         error

	width  int
	height int
	ready  bool
}

// NewApp creates the chat session model.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, ErrMissingPorts
	}
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	styles := DefaultStyles()

	input := textinput.New()
	input.Placeholder = "Ask about your equipment..."
	input.CharLimit = 256
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  styles,
		input:   input,
		spinner: sp,
	}, nil
}

// WithContext sets the context governing assistant calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Run starts the program in the alternate screen and blocks until the
// session ends.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	if _, err := p.Run(); err != nil {
		// Context cancellation is a clean shutdown, not a failure.
		if a.ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	}
	return nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("wrench chat"),
		textinput.Blink,
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case spinner.TickMsg:
		if !a.waiting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case activityMsg:
		a.activity = msg.label
		return a, a.listenCmd()

	case answerMsg:
		a.streamAnswer = msg.answer
		a.refreshViewport()
		return a, a.listenCmd()

	case turnDoneMsg:
		a.completeTurn(msg.result, nil)
		return a, nil

	case turnFailedMsg:
		a.completeTurn(msg.partial, msg.err)
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return a, tea.Quit

	case "enter":
		if a.waiting {
			return a, nil
		}
		question := strings.TrimSpace(a.input.Value())
		if question == "" {
			return a, nil
		}
		a.input.SetValue("")
		cmd := a.startTurn(question)
		a.refreshViewport()
		return a, cmd

	case "1", "2", "3":
		// A bare digit picks a follow-up suggestion; digits typed as
		// part of a question pass through to the input.
		if !a.waiting && a.input.Value() == "" {
			idx := int(msg.String()[0] - '1')
			if idx < len(a.suggestions) {
				a.input.SetValue(a.suggestions[idx])
				a.input.CursorEnd()
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Wrench"))
	b.WriteString("\n")
	b.WriteString(a.viewport.View())
	b.WriteString("\n")
	b.WriteString(a.styles.InputField.Render(a.input.View()))
	b.WriteString("\n")
	b.WriteString(a.suggestionLine())
	b.WriteString("\n")
	b.WriteString(a.statusLine())
	return b.String()
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	vpHeight := height - chromeRows
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !a.ready {
		a.viewport = viewport.New(width, vpHeight)
		a.ready = true
	} else {
		a.viewport.Width = width
		a.viewport.Height = vpHeight
	}
	a.input.Width = width - 4
	a.refreshViewport()
}

// startTurn launches the ask on its own goroutine and bridges the
// stream hooks into the update loop through the event channel.
func (a *App) startTurn(question string) tea.Cmd {
	events := make(chan tea.Msg, turnEventBuffer)
	a.events = events
	a.waiting = true
	a.pendingQuestion = question
	a.streamAnswer = ""
	a.activity = ""
	a.err = nil
	a.suggestions = nil

	ctx := a.ctx
	assistant := a.ports.Assistant
	history := a.askHistory()

	go func() {
		hooks := driving.AskHooks{
			OnActivity: func(label string) { events <- activityMsg{label: label} },
			OnAnswer:   func(answer string) { events <- answerMsg{answer: answer} },
		}
		result, err := assistant.Ask(ctx, question, history, hooks)
		if err != nil {
			events <- turnFailedMsg{err: err, partial: result}
		} else {
			events <- turnDoneMsg{result: result}
		}
		close(events)
	}()

	return tea.Batch(a.spinner.Tick, a.listenCmd())
}

// listenCmd waits for the next stream event.
func (a *App) listenCmd() tea.Cmd {
	events := a.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

// askHistory returns the turn window accompanying the next question.
func (a *App) askHistory() []domain.Turn {
	history := a.history
	if w := a.ports.HistoryWindow; w > 0 && len(history) > w {
		history = history[len(history)-w:]
	}
	return append([]domain.Turn(nil), history...)
}

func (a *App) completeTurn(result *driving.AskResult, err error) {
	a.records = append(a.records, turnRecord{
		question: a.pendingQuestion,
		result:   result,
		failed:   err,
	})

	if err == nil && result != nil {
		now := time.Now()
		a.history = append(a.history,
			domain.Turn{ID: uuid.NewString(), Role: domain.RoleUser, Content: a.pendingQuestion, At: now},
			domain.Turn{ID: uuid.NewString(), Role: domain.RoleAssistant, Content: result.Answer.Text, At: now},
		)
		a.suggestions = result.Answer.Suggestions
		if len(a.suggestions) > 3 {
			a.suggestions = a.suggestions[:3]
		}
	}

	a.err = err
	a.waiting = false
	a.pendingQuestion = ""
	a.streamAnswer = ""
	a.activity = ""
	a.events = nil
	a.refreshViewport()
}

func (a *App) refreshViewport() {
	if !a.ready {
		return
	}
	a.viewport.SetContent(a.renderConversation())
	a.viewport.GotoBottom()
}

func (a *App) renderConversation() string {
	width := a.viewport.Width
	if width <= 0 {
		width = 80
	}
	wrap := lipgloss.NewStyle().Width(width)

	var blocks []string
	for _, record := range a.records {
		blocks = append(blocks, a.renderRecord(record, wrap))
	}

	if a.waiting {
		var b strings.Builder
		b.WriteString(a.styles.Selected.Render("You: ") + a.pendingQuestion)
		if a.streamAnswer != "" {
			b.WriteString("\n" + a.styles.Success.Render("Wrench: ") + a.streamAnswer)
		}
		blocks = append(blocks, wrap.Render(b.String()))
	}

	if len(blocks) == 0 {
		return a.styles.Muted.Render("Ask about your equipment. Answers cite manual pages.")
	}
	return strings.Join(blocks, "\n\n")
}

func (a *App) renderRecord(record turnRecord, wrap lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(a.styles.Selected.Render("You: ") + record.question)

	switch {
	case record.failed != nil:
		if record.result != nil && record.result.Answer.Text != "" {
			b.WriteString("\n" + a.styles.Success.Render("Wrench: ") + record.result.Answer.Text)
		}
		b.WriteString("\n" + a.styles.Error.Render("Turn failed: "+record.failed.Error()))

	case record.result != nil:
		b.WriteString("\n" + a.styles.Success.Render("Wrench: ") + strings.TrimSpace(record.result.Answer.Text))
		if labels := contextLabels(record.result.Answer.Contexts); len(labels) > 0 {
			b.WriteString("\n" + a.styles.Muted.Render("Sources: "+strings.Join(labels, ", ")))
		}
		switch record.result.Retrieval {
		case driving.RetrievalEmptyIndex:
			b.WriteString("\n" + a.styles.Warning.Render("Not grounded: nothing is indexed yet."))
		case driving.RetrievalDegraded:
			b.WriteString("\n" + a.styles.Warning.Render("Not grounded: manual lookup was unavailable."))
		}
	}

	return wrap.Render(b.String())
}

func (a *App) suggestionLine() string {
	if a.waiting || len(a.suggestions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(a.suggestions))
	for i, s := range a.suggestions {
		parts = append(parts, fmt.Sprintf("%d) %s", i+1, s))
	}
	line := "Follow-ups: " + strings.Join(parts, "  ")
	if a.width > 0 {
		if runes := []rune(line); len(runes) > a.width {
			line = string(runes[:a.width-3]) + "..."
		}
	}
	return a.styles.Muted.Render(line)
}

func (a *App) statusLine() string {
	switch {
	case a.waiting:
		label := a.activity
		if label == "" {
			label = "Thinking"
		}
		return a.styles.StatusBar.Render(a.spinner.View() + " " + label + "...")
	case a.err != nil:
		return a.styles.Error.Render(a.err.Error())
	default:
		return a.styles.Help.Render("enter: send   1-3: follow-up   esc: quit")
	}
}

// contextLabels returns the deduplicated citation labels in retrieval
// order.
func contextLabels(contexts []domain.RetrievedChunk) []string {
	var labels []string
	seen := make(map[string]bool)
	for _, chunk := range contexts {
		label := chunk.Label()
		if seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}
