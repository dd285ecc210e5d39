package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	Background string // Outermost background
	Surface    string // Header and footer bars

	SelectionBg   string // Selected row background
	SelectionText string // Selected row text

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// StatusColors maps query status names to badge colors.
	StatusColors map[string]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		statusColors: t.StatusColors,
		background:   t.Background,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	statusColors map[string]string
	background   string
}

// StatusStyle returns a badge style for the given query status name.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	color := s.statusColors[status]
	if color == "" {
		color = "#6272A4" // Default muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 1)
}

var themes = map[string]Theme{
	"Dracula": draculaTheme(),
	"Slate":   slateTheme(),
}

var themeOrder = []string{"Dracula", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return draculaTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func draculaTheme() Theme {
	// Official Dracula palette: https://draculatheme.com/spec
	return Theme{
		Name: "Dracula",

		Background: "#191A21", // BGDarker
		Surface:    "#282A36", // Background

		SelectionBg:   "#44475A", // Selection
		SelectionText: "#F8F8F2", // Foreground

		Text:    "#F8F8F2", // Foreground
		Muted:   "#6272A4", // Comment
		Faint:   "#44475A", // Selection
		Accent:  "#BD93F9", // Purple
		Success: "#50FA7B", // Green
		Warning: "#FFB86C", // Orange
		Danger:  "#FF5555", // Red
		Info:    "#8BE9FD", // Cyan

		StatusColors: map[string]string{
			"FIRST_FETCH":   "#8BE9FD", // Cyan (active)
			"REFETCHING":    "#BD93F9", // Purple (active)
			"FETCHING_MORE": "#FF79C6", // Pink (active)
			"POLLING":       "#6272A4", // Comment (background)
			"READY":         "#50FA7B", // Green
			"ERROR":         "#FF5555", // Red
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900

		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
		Info:    "#06b6d4", // cyan-500

		StatusColors: map[string]string{
			"FIRST_FETCH":   "#38bdf8", // sky-400
			"REFETCHING":    "#8b5cf6", // violet-500
			"FETCHING_MORE": "#ec4899", // pink-500
			"POLLING":       "#64748b", // slate-500
			"READY":         "#16a34a", // green-600
			"ERROR":         "#dc2626", // red-600
		},
	}
}
