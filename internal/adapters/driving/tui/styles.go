package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colour palette for the chat view.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme returns the wrench palette: torque orange on dark steel.
func DefaultTheme() Theme {
	return Theme{
		Primary:    lipgloss.Color("#F97316"),
		Secondary:  lipgloss.Color("#FDBA74"),
		Background: lipgloss.Color("#1C1C1E"),
		Foreground: lipgloss.Color("#E5E5E5"),
		Muted:      lipgloss.Color("#737373"),
		Success:    lipgloss.Color("#22C55E"),
		Warning:    lipgloss.Color("#EAB308"),
		Error:      lipgloss.Color("#EF4444"),
	}
}

// Styles holds the rendered lipgloss styles used by the chat view.
type Styles struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Spinner    lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Subtitle:   lipgloss.NewStyle().Foreground(theme.Secondary),
		Normal:     lipgloss.NewStyle().Foreground(theme.Foreground),
		Muted:      lipgloss.NewStyle().Foreground(theme.Muted),
		Selected:   lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Error:      lipgloss.NewStyle().Foreground(theme.Error),
		Success:    lipgloss.NewStyle().Bold(true).Foreground(theme.Success),
		Warning:    lipgloss.NewStyle().Foreground(theme.Warning),
		InputField: lipgloss.NewStyle().Foreground(theme.Foreground),
		StatusBar:  lipgloss.NewStyle().Foreground(theme.Secondary),
		Spinner:    lipgloss.NewStyle().Foreground(theme.Primary),
		Help:       lipgloss.NewStyle().Foreground(theme.Muted),
	}
}

// DefaultStyles creates styles from the default theme.
func DefaultStyles() Styles {
	return NewStyles(DefaultTheme())
}
